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
	"github.com/botobag/graphcache/graphql/ast"
	"github.com/botobag/graphcache/graphql/parser"
	"github.com/botobag/graphcache/graphql/token"
	"github.com/botobag/graphcache/internal/util"
)

type writeOutput struct {
	Touched    []string `json:"touched"`
	Dependents []string `json:"dependents"`
}

// NewWriteCommand creates the write command.
func NewWriteCommand(rootOpts *RootOptions) *cobra.Command {
	var variables string

	cmd := &cobra.Command{
		Use:   "write <document-file> <data-file>",
		Short: "Write the result of an operation into the cache",
		Long: util.Dedent(`
			Write the data in data-file (a JSON object) as the result of the operation in
			document-file and save the cache. Prints the entities written and the queries affected.
		`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()
			return runWrite(s, args[0], args[1], variables)
		},
	}

	cmd.Flags().StringVar(&variables, "variables", "", "variables of the operation as a JSON object")
	return cmd
}

func runWrite(s *session, documentFile string, dataFile string, variables string) error {
	req, err := loadRequest(s, documentFile, variables)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(dataFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "read data", err)
	}
	var data map[string]interface{}
	if err := json.Unmarshal(content, &data); err != nil {
		return WrapExitError(ExitCommandError, "decode data", err)
	}

	outcome, err := s.cache.ProcessResult(cache.NewOperation(req, ""), data)
	if err != nil {
		return WrapExitError(ExitFailure, "write result", err)
	}
	if err := s.persist(); err != nil {
		return err
	}

	output := writeOutput{
		Touched:    nonNil(outcome.Touched),
		Dependents: nonNil(outcome.Dependents),
	}
	return s.out.print(output, func(w io.Writer) error {
		if err := writeSection(w, "Touched", output.Touched); err != nil {
			return err
		}
		return writeSection(w, "Dependents", output.Dependents)
	})
}

// NewInvalidateCommand creates the invalidate command.
func NewInvalidateCommand(rootOpts *RootOptions) *cobra.Command {
	var arguments string

	cmd := &cobra.Command{
		Use:   "invalidate <entity> [field]",
		Short: "Remove an entity or one of its fields from the cache",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			var fieldName string
			if len(args) > 1 {
				fieldName = args[1]
			}
			var fieldArgs map[string]interface{}
			if len(arguments) > 0 {
				fieldArgs, err = parseArguments(arguments)
				if err != nil {
					return WrapExitError(ExitCommandError, "parse arguments", err)
				}
			}

			dependents := nonNil(s.cache.Invalidate(args[0], fieldName, fieldArgs))
			if err := s.persist(); err != nil {
				return err
			}
			return s.out.print(dependents, func(w io.Writer) error {
				return writeSection(w, "Dependents", dependents)
			})
		},
	}

	cmd.Flags().StringVar(&arguments, "args", "", `arguments of the field as a GraphQL object, e.g. "{first: 10}"`)
	return cmd
}

// parseArguments reads field arguments written the way they appear in a document, so the field
// key matches the one computed for queries.
func parseArguments(literal string) (map[string]interface{}, error) {
	value, err := parser.ParseValue(token.NewSource(literal))
	if err != nil {
		return nil, err
	}
	if _, ok := value.(ast.ObjectValue); !ok {
		return nil, fmt.Errorf("expected an object of arguments but got %s", ast.Print(value))
	}
	args, _ := ast.ValueOf(value, nil)
	return args.(map[string]interface{}), nil
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
