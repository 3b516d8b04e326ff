package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// version is the compiler's own release tag (spec §6 "--version/-v").
const version = "mayoc 0.1.0"

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&buildCmd{}, "")
	subcommands.Register(&tokensCmd{}, "")
	subcommands.Register(&astCmd{}, "")
	subcommands.Register(&replCmd{}, "")

	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.BoolVar(showVersion, "v", false, "Print version and exit (shorthand)")
	echo := flag.String("echo", "", "Print this string and exit")
	flag.StringVar(echo, "e", "", "Print this string and exit (shorthand)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}
	if *echo != "" {
		fmt.Println(*echo)
		os.Exit(0)
	}

	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
