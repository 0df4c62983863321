// Command nftest runs the regression tests of the reference designs against
// a simulated or a hardware device.
package main

import (
	"github.com/sarchlab/nftest/session"
)

func main() {
	session.Exit(execute())
}
