package main

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/urfave/cli.v2"

	"decvm/machine"
	"decvm/shell"
)

func main() {
	app := &cli.App{
		Name:    "decvm",
		Usage:   "decimal-arithmetic machine emulator",
		Version: "v0.0.1",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "disk",
				Aliases: []string{"d"},
				Usage:   "disk image path (created if missing)",
				Value:   "disk.img",
			},
			&cli.StringFlag{
				Name:    "log",
				Aliases: []string{"l"},
				Usage:   "trace/event log path (discarded if empty)",
			},
			&cli.StringFlag{
				Name:    "load",
				Usage:   "program file to load before entering the shell",
			},
			&cli.IntFlag{
				Name:  "max-cycles",
				Usage: "cycle limit the shell's run command honors (0 uses the default)",
				Value: machine.DefaultMaxCycles,
			},
		},
		Action: run,
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	m, err := machine.New(c.String("disk"), c.String("log"))
	if err != nil {
		return fmt.Errorf("decvm: %w", err)
	}
	defer m.Shutdown()

	sh := shell.New(m, os.Stdin, os.Stdout)
	if n := c.Int("max-cycles"); n > 0 {
		sh.MaxCycles = n
	}

	if path := c.String("load"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("decvm: %w", err)
		}
		res, err := m.Load(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("decvm: %w", err)
		}
		fmt.Printf("programa %q cargado: %d instrucciones en %d\n", res.Name, res.InstructionsLoaded, res.StartAddress)
	}

	return sh.Run()
}
