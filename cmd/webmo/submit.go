package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chemtools/webmo-go/webmo"
	"github.com/chemtools/webmo-go/webmo/collect"
)

func newSubmitCmd(opts *rootOptions) *cobra.Command {
	var (
		jobName   string
		engine    string
		inputFile string
		queue     string
		nodes     int
		ppn       int
		extra     []string
		wait      bool
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new job to a computational engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			contents, err := os.ReadFile(inputFile)
			if err != nil {
				return fmt.Errorf("reading input file: %w", err)
			}

			extraFields, err := parseKeyValues(extra)
			if err != nil {
				return err
			}

			client, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()

			jobNumber, err := client.SubmitJob(ctx, jobName, string(contents), engine, &webmo.SubmitOptions{
				Queue: queue,
				Nodes: nodes,
				PPN:   ppn,
				Extra: extraFields,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "submitted job %d\n", jobNumber)

			if wait {
				if err := client.WaitForJob(ctx, jobNumber, 0); err != nil {
					return err
				}
				status, err := client.JobStatus(ctx, jobNumber)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "job %d %s\n", jobNumber, status)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&jobName, "name", "", "job name (required)")
	f.StringVar(&engine, "engine", "", "computational engine (required)")
	f.StringVarP(&inputFile, "input", "i", "", "input file to submit (required)")
	f.StringVar(&queue, "queue", "", "scheduler queue")
	f.IntVar(&nodes, "nodes", 1, "number of nodes")
	f.IntVar(&ppn, "ppn", 1, "processors per node")
	f.StringArrayVar(&extra, "set", nil, "extra scheduler field as key=value (repeatable)")
	f.BoolVar(&wait, "wait", false, "block until the job is terminal")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("engine")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newTemplatesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "templates ENGINE",
		Short: "List the job templates of an engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()

			templates, err := client.Templates(ctx, args[0])
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd, templates)
			}

			names := make([]string, 0, len(templates))
			for name := range templates {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				tmpl := templates[name]
				fmt.Fprintf(cmd.OutOrStdout(), "%s (id %s, %d variables)\n", name, tmpl.ID, len(tmpl.Variables))
			}
			return nil
		},
	}
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		engine      string
		template    string
		vars        []string
		ask         []string
		noDefaults  bool
		outFile     string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an input file from a job template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			variables, err := parseKeyValues(vars)
			if err != nil {
				return err
			}

			client, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()

			templates, err := client.Templates(ctx, engine)
			if err != nil {
				return err
			}
			tmpl, ok := templates[template]
			if !ok {
				return fmt.Errorf("engine %s has no template %q", engine, template)
			}

			if interactive {
				queryVars := ask
				if len(queryVars) == 0 {
					for name := range tmpl.Variables {
						if _, fixed := variables[name]; !fixed {
							queryVars = append(queryVars, name)
						}
					}
					sort.Strings(queryVars)
				}

				collector := collect.NewConsoleCollector(tmpl, queryVars, variables, cmd.InOrStdin(), cmd.ErrOrStderr())
				if err := collector.Display(); err != nil {
					return err
				}
				variables, err = collector.Variables()
				if err != nil {
					return err
				}
			}

			input, err := client.GenerateInput(ctx, tmpl, variables, !noDefaults)
			if err != nil {
				return err
			}

			if outFile == "" {
				fmt.Fprint(cmd.OutOrStdout(), input)
				return nil
			}
			if err := os.WriteFile(outFile, []byte(input), 0o644); err != nil {
				return fmt.Errorf("writing input file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outFile)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&engine, "engine", "", "computational engine (required)")
	f.StringVar(&template, "template", "", "template name (required)")
	f.StringArrayVar(&vars, "var", nil, "template variable as key=value (repeatable)")
	f.StringArrayVar(&ask, "ask", nil, "variable to prompt for in interactive mode (repeatable)")
	f.BoolVar(&noDefaults, "no-defaults", false, "do not fill omitted variables with template defaults")
	f.StringVarP(&outFile, "out", "o", "", "output file (default: stdout)")
	f.BoolVar(&interactive, "interactive", false, "prompt for variable values on the console")
	_ = cmd.MarkFlagRequired("engine")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

func parseKeyValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid key=value pair %q", pair)
		}
		out[k] = v
	}
	return out, nil
}
