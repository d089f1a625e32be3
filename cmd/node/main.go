// Command node runs an arcade chain node and offers key, config and
// leaderboard utilities.
package main

import (
	"fmt"
	"os"

	// Import VM modules to trigger their init() self-registration.
	_ "github.com/tolelom/arcadechain/vm/modules/arcade"
	_ "github.com/tolelom/arcadechain/vm/modules/economy"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
