// Copyright 2025 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"
	"os/signal"

	"cloudeng.io/agvis/webapp/launcher"
	"cloudeng.io/cmdutil"
)

type runFlags struct {
	Binary    string `subcmd:"binary,gunicorn,name of or path to the http server binary"`
	Host      string `subcmd:"host,localhost,host for the http server to bind to"`
	Port      int    `subcmd:"port,8810,port for the http server to bind to"`
	Workers   int    `subcmd:"workers,1,number of http server worker processes"`
	StaticDir string `subcmd:"static-dir,agvis/static,location of the application's static files"`
	Dir       string `subcmd:"dir,,working directory for the http server"`
	cmdutil.LoggingFlags
}

func (rf *runFlags) config() launcher.Config {
	return launcher.Config{
		Binary:    rf.Binary,
		Host:      rf.Host,
		Port:      rf.Port,
		Workers:   rf.Workers,
		StaticDir: rf.StaticDir,
		Dir:       rf.Dir,
	}
}

func run(ctx context.Context, values any, args []string) error {
	ctx, done := signal.NotifyContext(ctx, os.Interrupt)
	defer done()
	fv := values.(*runFlags)
	ctx, closeLog, err := withLogger(ctx, fv.LoggingFlags)
	if err != nil {
		return err
	}
	defer closeLog()
	launcher.New(fv.config()).RunAndReport(ctx, args[0])
	return nil
}
