package consensus

import (
	"log"
	"os"
)

// defaultLogger builds a component-prefixed logger matching the
// teacher's own log.New(os.Stdout, "PREFIX: ", ...) convention, used
// whenever a caller constructs a component without supplying its own.
func defaultLogger(component string) *log.Logger {
	return log.New(os.Stdout, component+": ", log.Ldate|log.Ltime|log.Lshortfile)
}
