// oldtimer - per-step timing reports for ChaNGa simulation logs.
//
// oldtimer splits a simulation log into big steps and rung intervals and
// summarizes the time spent in each computational phase.
package main

import (
	"os"

	"github.com/ccollicutt/oldtimer/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
