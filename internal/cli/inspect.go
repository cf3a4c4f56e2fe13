/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/botobag/graphcache/internal/util"
	"github.com/botobag/graphcache/jsonwriter"
)

type inspectOutput struct {
	Entity string                 `json:"entity"`
	Fields map[string]interface{} `json:"fields"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <entity>",
		Short: "Show the stored fields of an entity",
		Long: util.Dedent(`
			Show the stored fields of an entity given by its key (e.g. Todo:1). Links to other
			entities appear as their keys.
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()
			return runInspect(s, args[0])
		},
	}
}

func runInspect(s *session, entityKey string) error {
	snapshot := s.cache.Snapshot()
	fields, ok := snapshot[entityKey]
	if !ok {
		known := make([]string, 0, len(snapshot))
		for key := range snapshot {
			known = append(known, key)
		}
		sort.Strings(known)
		message := fmt.Sprintf("Unknown entity %q.", entityKey)
		if suggestions := util.SuggestionList(entityKey, known); len(suggestions) > 0 {
			message += " Did you mean " + util.OrList(suggestions, 5, true) + "?"
		}
		return NewExitError(ExitFailure, message)
	}

	return s.out.print(inspectOutput{Entity: entityKey, Fields: fields}, func(w io.Writer) error {
		fieldKeys := make([]string, 0, len(fields))
		for fieldKey := range fields {
			fieldKeys = append(fieldKeys, fieldKey)
		}
		sort.Strings(fieldKeys)

		lines := make([]string, 0, len(fieldKeys)+1)
		lines = append(lines, entityKey)
		for _, fieldKey := range fieldKeys {
			value, err := jsonwriter.Stringify(fields[fieldKey])
			if err != nil {
				return err
			}
			lines = append(lines, "  "+fieldKey+": "+value)
		}
		return writeLines(w, lines)
	})
}
