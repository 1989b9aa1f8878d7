// Command validate checks article files against the article schema. It is
// meant to run as a git pre-commit hook:
//
//	validate $(git diff --cached --name-only -- 'blog/*.json')
//
// Each violation is printed as "file: pointer: message". The exit status is
// 1 when any file is invalid and 2 on usage errors.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"blogwriter/internal/domain"
	"blogwriter/internal/service/article/schema"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	quiet := fs.Bool("q", false, "Only print violations, not the files that passed")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: validate [-q] FILE...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	validator, err := schema.New()
	if err != nil {
		fmt.Fprintf(stderr, "validate: %v\n", err)
		return 2
	}

	status := 0
	for _, path := range fs.Args() {
		if !checkFile(validator, path, *quiet, stdout) {
			status = 1
		}
	}
	return status
}

// checkFile validates one file and reports the outcome. It returns false
// when the file is missing, unreadable or invalid.
func checkFile(v *schema.Validator, path string, quiet bool, w io.Writer) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "%s: %v\n", path, err)
		return false
	}

	err = v.Validate(data)
	if err == nil {
		if !quiet {
			fmt.Fprintf(w, "%s: ok\n", path)
		}
		return true
	}

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		fmt.Fprintf(w, "%s: %v\n", path, err)
		return false
	}
	for _, violation := range ve.Violations {
		pointer := violation.Path
		if pointer == "" {
			pointer = "/"
		}
		fmt.Fprintf(w, "%s: %s: %s\n", path, pointer, violation.Message)
	}
	return false
}
