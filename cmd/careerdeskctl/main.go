// Command careerdeskctl runs maintenance tasks against the careerdesk database.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCmd(loadApp).Execute(); err != nil {
		logrus.Errorf("careerdeskctl: %v", err)
		os.Exit(1)
	}
}
