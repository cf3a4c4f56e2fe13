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
	"os"

	"github.com/spf13/cobra"

	"github.com/botobag/graphcache/cache"
	"github.com/botobag/graphcache/graphql"
	"github.com/botobag/graphcache/internal/util"
)

type readOutput struct {
	Data     map[string]interface{} `json:"data"`
	Complete bool                   `json:"complete"`
	Partial  bool                   `json:"partial"`
}

// NewReadCommand creates the read command.
func NewReadCommand(rootOpts *RootOptions) *cobra.Command {
	var variables string

	cmd := &cobra.Command{
		Use:   "read <query-file>",
		Short: "Read a query from the cache",
		Long: util.Dedent(`
			Read the query in the given file from the cache and print its data. The command fails
			when the cache cannot answer the query. The dependencies of the query are saved.
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()
			return runRead(s, args[0], variables)
		},
	}

	cmd.Flags().StringVar(&variables, "variables", "", "variables of the query as a JSON object")
	return cmd
}

func runRead(s *session, queryFile string, variables string) error {
	req, err := loadRequest(s, queryFile, variables)
	if err != nil {
		return err
	}

	result, err := s.cache.ReadQuery(req)
	if err != nil {
		return WrapExitError(ExitFailure, "read query", err)
	}
	if err := s.persist(); err != nil {
		return err
	}
	if result.Data == nil {
		return WrapExitError(ExitFailure, "read query",
			graphql.NewError(fmt.Sprintf("cannot answer %s", queryFile), graphql.ErrKindCacheMiss))
	}

	output := readOutput{
		Data:     result.Data,
		Complete: result.Complete,
		Partial:  result.Partial,
	}
	return s.out.print(output, func(w io.Writer) error {
		text, err := json.MarshalIndent(result.Data, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", text)
		return err
	})
}

// loadRequest parses the document in path through the cache and decodes the variables.
func loadRequest(s *session, path string, variables string) (cache.Request, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return cache.Request{}, WrapExitError(ExitCommandError, "read document", err)
	}
	doc, err := s.cache.Parse(string(source))
	if err != nil {
		return cache.Request{}, WrapExitError(ExitCommandError, "parse document", err)
	}

	var values map[string]interface{}
	if len(variables) > 0 {
		if err := json.Unmarshal([]byte(variables), &values); err != nil {
			return cache.Request{}, WrapExitError(ExitCommandError, "decode variables", err)
		}
	}
	return cache.NewRequest(doc, values), nil
}
