package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/BV-BRC/cwe-judge/internal/langpreset"
	"github.com/BV-BRC/cwe-judge/pkg/client"
)

// getClient builds a judge API client from the persistent --server
// flag.
func getClient(cmd *cobra.Command) *client.Client {
	server, _ := cmd.Flags().GetString("server")
	return client.NewClient(client.Config{
		BaseURL: server,
		Timeout: 2 * time.Minute,
	})
}

// submitFile is the shape a submit request file (JSON or YAML) takes
// on disk.
type submitFile struct {
	Code        string   `json:"code" yaml:"code"`
	Language    string   `json:"language" yaml:"language"`
	Input       string   `json:"input" yaml:"input"`
	Expected    string   `json:"expected" yaml:"expected"`
	TimeLimit   *float64 `json:"time_limit,omitempty" yaml:"time_limit,omitempty"`
	MemoryLimit *int64   `json:"memory_limit,omitempty" yaml:"memory_limit,omitempty"`
	StackLimit  *int64   `json:"stack_limit,omitempty" yaml:"stack_limit,omitempty"`
}

func newSubmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit <request.json|request.yaml>",
		Short: "Submit a source program for judging",
		Args:  cobra.ExactArgs(1),
		RunE:  runSubmit,
	}
	return cmd
}

func runSubmit(cmd *cobra.Command, args []string) error {
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read request file: %w", err)
	}

	var req submitFile
	if filepath.Ext(path) == ".json" {
		if err := json.Unmarshal(data, &req); err != nil {
			return fmt.Errorf("failed to parse request JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &req); err != nil {
			return fmt.Errorf("failed to parse request YAML: %w", err)
		}
	}

	resp, err := getClient(cmd).Submit(context.Background(), client.SubmitRequest{
		Code:        req.Code,
		Language:    req.Language,
		Input:       req.Input,
		Expected:    req.Expected,
		TimeLimit:   req.TimeLimit,
		MemoryLimit: req.MemoryLimit,
		StackLimit:  req.StackLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to submit job: %w", err)
	}

	fmt.Printf("Job submitted successfully\n")
	fmt.Printf("ID: %s\n", resp.ID)
	fmt.Printf("Status: %s\n", resp.Status)

	return nil
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <job-id>",
		Short: "Check a submitted job's status and result",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	result, err := getClient(cmd).Check(context.Background(), args[0])
	if err != nil {
		var notFound *client.ErrNotFound
		if errors.As(err, &notFound) {
			fmt.Println("job not found")
			return nil
		}
		return fmt.Errorf("failed to check job: %w", err)
	}

	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(pretty))

	return nil
}

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported languages",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range langpreset.Names() {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the judge service is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := getClient(cmd).Health(context.Background()); err != nil {
				return fmt.Errorf("service unhealthy: %w", err)
			}
			fmt.Println("ok")
			return nil
		},
	}
}
