// tempo-eval parses a condition expression, evaluates it once and prints
// the result. Useful for trying out expressions before putting them in a
// task definition.
//
// Usage:
//
//	tempo-eval [-tz Europe/Berlin] [-at 2026-01-02T15:04:05Z] "daily between 08:00 and 17:00"
//
// Exit codes: 0 when the condition is true, 1 when false, 2 on error.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"tempo/internal/clock"
	"tempo/internal/condition"
	"tempo/internal/parse"
)

func main() {
	tz := flag.String("tz", "", "IANA timezone for time expressions (default: local)")
	at := flag.String("at", "", "evaluate at this RFC3339 instant instead of now")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: tempo-eval [-tz zone] [-at instant] <expression>")
		os.Exit(2)
	}
	expression := strings.Join(flag.Args(), " ")

	loc := time.Local
	if *tz != "" {
		var err error
		loc, err = time.LoadLocation(*tz)
		if err != nil {
			fmt.Fprintf(os.Stderr, "unknown timezone %q\n", *tz)
			os.Exit(2)
		}
	}

	var clk clock.Clock = clock.RealClock{}
	if *at != "" {
		instant, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid instant %q: %v\n", *at, err)
			os.Exit(2)
		}
		clk = clock.NewMock(instant)
	}

	parser := parse.NewRegistryAt(loc, clk)
	cond, err := parser.Parse(expression)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse error: %v\n", err)
		os.Exit(2)
	}

	value, err := cond.Evaluate(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "evaluation error: %v\n", err)
		os.Exit(2)
	}

	now := clk.Now()
	estimate := condition.EstimateNextChange(cond, now)

	fmt.Printf("expression: %s\n", expression)
	fmt.Printf("value:      %t\n", value)
	fmt.Printf("next change in at least %s\n", estimate)

	if !value {
		os.Exit(1)
	}
}
