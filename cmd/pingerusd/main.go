package main

import (
	"fmt"
	"os"

	"github.com/pingerus/monitor-core/internal/bootstrap"
	"github.com/pingerus/monitor-core/internal/config"
)

func main() {
	env, err := config.LoadRootEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal: ", err)
		os.Exit(1)
	}

	app := bootstrap.New(env)
	app.Run()
}
