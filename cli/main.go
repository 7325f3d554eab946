package main

import (
	"os"

	_ "github.com/satishbabariya/magicorm/driver/mysql"
	_ "github.com/satishbabariya/magicorm/driver/postgres"
	_ "github.com/satishbabariya/magicorm/driver/sqlite"

	"github.com/satishbabariya/magicorm/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
