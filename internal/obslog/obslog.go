// Package obslog is the core's logging sink: a structured JSON line per
// message, plus chalk-colored fatal/assert helpers for the conditions that
// must stop the match (navmesh build failures).
package obslog

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ttacon/chalk"
)

// Context carries arbitrary structured fields alongside a log line.
type Context map[string]interface{}

type message struct {
	Time    string  `json:"time"`
	Service string  `json:"service"`
	Message string  `json:"message"`
	Context Context `json:"context,omitempty"`
}

// Info emits a structured JSON line tagged with the given service name.
func Info(service string, msg string, ctx Context) {
	m := message{
		Time:    time.Now().Format(time.RFC3339),
		Service: service,
		Message: msg,
		Context: ctx,
	}

	data, _ := json.Marshal(m)
	fmt.Println(string(data))
}

// Fatal logs msg in red and panics with err. Reserved for conditions that
// are fatal for the level (BoundsOverflow, NavmeshTooComplex).
func Fatal(err error, msg string) {
	if err == nil {
		return
	}
	fmt.Print(chalk.Red)
	log.Print(msg, chalk.Reset)
	log.Panicln(err)
}

// Assert panics with msg (in red) when ok is false.
func Assert(ok bool, msg string) {
	if !ok {
		fmt.Print(chalk.Red)
		log.Print(msg, chalk.Reset)
		log.Panic()
	}
}

// Warn prints a non-fatal diagnostic to stderr.
func Warn(service string, msg string) {
	fmt.Fprintf(os.Stderr, "%s[%s]%s %s\n", chalk.Yellow, service, chalk.Reset, msg)
}
