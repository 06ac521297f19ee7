package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// printer renders command results as text or JSON. In JSON mode stdout
// carries only the JSON document; everything else goes to stderr.
type printer struct {
	json bool
	out  io.Writer
}

func newPrinter(cmd *cobra.Command) *printer {
	return &printer{json: jsonMode(cmd), out: cmd.OutOrStdout()}
}

// emit writes v as indented JSON in JSON mode, or the rendered text
// otherwise.
func (p *printer) emit(v any, text func() string) error {
	if p.json {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(p.out, string(data))
		return err
	}
	if s := text(); s != "" {
		_, err := fmt.Fprint(p.out, s)
		return err
	}
	return nil
}
