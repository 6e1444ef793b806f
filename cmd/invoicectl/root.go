package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"invoicepipe/client"
	"invoicepipe/config"
	"invoicepipe/reconcile"
	"invoicepipe/service"
	"invoicepipe/storage"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "invoicectl",
		Short:         "Invoice extraction pipeline CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newProcessCommand())
	rootCmd.AddCommand(newShowCommand())
	rootCmd.AddCommand(newVendorsCommand())

	return rootCmd
}

func newProcessCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "process <file> [file...]",
		Short: "Extract structured invoices from documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeAll, err := buildService()
			if err != nil {
				return err
			}
			defer closeAll()

			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				response, err := svc.ProcessFile(cmd.Context(), filepath.Base(path), data)
				if err != nil {
					return fmt.Errorf("process %s: %w", path, err)
				}
				if err := printJSON(cmd, response); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file-hash>",
		Short: "Show a previously processed invoice by content hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			store, err := storage.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			result, err := store.GetByHash(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if result == nil {
				return fmt.Errorf("no document with hash %s", args[0])
			}
			return printJSON(cmd, result)
		},
	}
}

func newVendorsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "vendors",
		Short: "List total spend per vendor across processed invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			store, err := storage.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			totals, err := store.ListVendorTotals(cmd.Context())
			if err != nil {
				return err
			}
			for vendor, cents := range totals {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d.%02d\n", vendor, cents/100, cents%100)
			}
			return nil
		},
	}
}

func buildService() (*service.ExtractionService, func(), error) {
	cfg := config.LoadConfig()

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}

	tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath)
	llmClient := client.NewLLMClient(cfg.LLMAPIBase, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMAllowStub)
	pdfProcessor := service.NewPDFProcessor()
	engine := reconcile.New(reconcile.Options{MaxLabelDistance: cfg.MaxLabelDistance})

	svc := service.NewExtractionService(
		pdfProcessor,
		tesseractClient,
		llmClient,
		store,
		engine,
		cfg.MinTextLength,
		cfg.MaxOCRPages,
	)

	closeAll := func() {
		tesseractClient.Close()
		_ = store.Close()
	}
	return svc, closeAll, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
