package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	errNoConfirmation = errors.New("refusing to proceed without confirmation; rerun with --yes")
	errAborted        = errors.New("aborted")
)

// confirm asks a yes/no question on out and reads the answer from in.
func confirm(ctx context.Context, in io.Reader, out io.Writer, approved bool, interactive bool, prompt string) error {
	if approved {
		return nil
	}
	if !interactive {
		return errNoConfirmation
	}
	fmt.Fprintf(out, "%s [y/N] ", strings.TrimSpace(prompt))

	reader := bufio.NewReader(in)
	result := make(chan struct {
		line string
		err  error
	}, 1)
	go func() {
		line, err := reader.ReadString('\n')
		result <- struct {
			line string
			err  error
		}{line: line, err: err}
	}()

	var line string
	select {
	case <-ctx.Done():
		fmt.Fprintln(out)
		return ctx.Err()
	case res := <-result:
		if res.err != nil && !errors.Is(res.err, io.EOF) {
			return res.err
		}
		line = res.line
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	}
	return errAborted
}
