// Command bioquery answers natural-language sequence analysis questions.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	err := Execute(context.Background(), os.Args[1:])
	switch {
	case err == nil:
	case errors.Is(err, errQueryFailed):
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
