// Command dashctl administers a dashboard database: it creates logins,
// changes roles, seeds the founding team and exports the finance ledger.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
