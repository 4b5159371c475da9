// Command resque is an operator CLI over a resque keyspace: enqueue and
// inspect jobs, manage queues, failures and counters, and check workers.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand(newApp()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
