// Command formflow fills a schema-driven form interactively on the terminal
// and submits the answers, either to the schema's submit endpoint or to
// stdout as JSON.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/telmora/go-formflow/pkg/form"
	"github.com/telmora/go-formflow/pkg/listmap"
	"github.com/telmora/go-formflow/pkg/openapi"
	"github.com/telmora/go-formflow/pkg/providers/prompt"
	"github.com/telmora/go-formflow/pkg/schema"
	"github.com/telmora/go-formflow/pkg/schema/loader"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "formflow:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		schemaPath  = flag.String("schema", "", "form schema document: local path or http(s) URL (JSON or YAML)")
		openapiPath = flag.String("openapi", "", "OpenAPI document to derive the schema from")
		operationID = flag.String("operation", "", "operationId to build the form for (with -openapi)")
		listmapPath = flag.String("listmap", "", "shared option dictionary: local path or http(s) URL")
		defaultsRaw = flag.String("defaults", "", "JSON object of caller default values")
		dryRun      = flag.Bool("dry-run", false, "print the answers instead of submitting")
		timeout     = flag.Duration("timeout", 30*time.Second, "HTTP timeout for loads and submission")
	)
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	formSchema, err := loadSchema(ctx, *schemaPath, *openapiPath, *operationID)
	if err != nil {
		return err
	}

	opts, err := buildOptions(ctx, formSchema, *listmapPath, *defaultsRaw, *dryRun, *timeout)
	if err != nil {
		return err
	}

	f, err := form.New(formSchema, opts...)
	if err != nil {
		return err
	}
	defer f.Close()

	session := prompt.NewSession(f, prompt.NewSurveyDriver())
	return session.Run(ctx)
}

func loadSchema(ctx context.Context, schemaPath, openapiPath, operationID string) (*schema.FormSchema, error) {
	switch {
	case schemaPath != "":
		if isURL(schemaPath) {
			return loader.New().FromURL(ctx, schemaPath)
		}
		return loader.New().FromFile(schemaPath)
	case openapiPath != "":
		if operationID == "" {
			return nil, errors.New("-operation is required with -openapi")
		}
		data, err := os.ReadFile(openapiPath)
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", openapiPath, err)
		}
		doc, err := openapi.LoadDocument(ctx, data)
		if err != nil {
			return nil, err
		}
		return openapi.BuildFormSchema(doc, operationID)
	default:
		return nil, errors.New("one of -schema or -openapi is required")
	}
}

func buildOptions(ctx context.Context, formSchema *schema.FormSchema, listmapPath, defaultsRaw string, dryRun bool, timeout time.Duration) ([]form.Option, error) {
	var opts []form.Option

	if listmapPath != "" {
		lm, err := loadListMap(ctx, listmapPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, form.WithListMapStore(listmap.NewMemoryStore(lm)))
	}

	if defaultsRaw != "" {
		var defaults map[string]any
		if err := json.Unmarshal([]byte(defaultsRaw), &defaults); err != nil {
			return nil, fmt.Errorf("parse -defaults: %w", err)
		}
		opts = append(opts, form.WithDefaults(defaults))
	}

	opts = append(opts, form.WithSubmitHandler(submitHandler(formSchema, dryRun, timeout)))
	return opts, nil
}

func loadListMap(ctx context.Context, path string) (listmap.ListMap, error) {
	if isURL(path) {
		return loader.New().ListMapFromURL(ctx, path)
	}
	return loader.New().ListMapFromFile(path)
}

// submitHandler posts the snapshot to the schema's submit endpoint, or
// prints it when no endpoint is configured or -dry-run is set.
func submitHandler(formSchema *schema.FormSchema, dryRun bool, timeout time.Duration) form.SubmitHandler {
	return func(ctx context.Context, values map[string]any) error {
		payload, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return err
		}

		if dryRun || formSchema.Submit == nil || formSchema.Submit.URL == "" {
			fmt.Println(string(payload))
			return nil
		}

		method := formSchema.Submit.Method
		if method == "" {
			method = http.MethodPost
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, method, formSchema.Submit.URL, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("submit: unexpected status %s", resp.Status)
		}
		fmt.Fprintln(os.Stderr, "submitted:", resp.Status)
		return nil
	}
}

func isURL(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}
