// keyrelay - remote pointer relay for on-screen keyboard experiments
package main

import (
	"os"

	"github.com/ashureev/keyrelay/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
