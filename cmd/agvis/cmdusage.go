// Usage of agvis
//
//	Serve the AGVis web application. Two modes are supported.
//
//	serve runs an http server within this process that serves the static assets
//	embedded in the binary. Files found in the directory specified by --assets-dir
//	take precedence over the embedded ones. Requests under --upstream-prefix may
//	be proxied to an upstream service. If --socket is specified, connections from
//	other local processes are accepted on that unix domain socket.
//
//	run launches an external http server, gunicorn by default, to serve the
//	specified application module and runs it until interrupted.
//
//	serve - serve the AGVis web application in-process until interrupted.
//	  run - run the AGVis web application under an external http server such as gunicorn.
package main
