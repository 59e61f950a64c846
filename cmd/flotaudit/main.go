// Command flotaudit scans a FlotaHub database for tenant-isolation
// violations and, with --fix, quarantines users left without an
// organization.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
