package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/reoring/minimodel"
	"github.com/reoring/minimodel/i18n"
	"github.com/reoring/minimodel/internal/jsondoc"
	"github.com/reoring/minimodel/yamlschema"
)

var (
	// Global flags
	schemaFile string
	lang       string
	logLevel   string
	allowDups  bool
)

var rootCmd = &cobra.Command{
	Use:   "minimodel",
	Short: "Validate and export JSON documents with a YAML model schema",
	Long: `minimodel compiles a YAML model schema and applies it to JSON documents.

A document is a JSON object, or a JSON array of objects. Use "-" (or no
argument) to read the document from stdin.

Examples:
  minimodel validate --schema post.yaml post.json
  minimodel export --schema post.yaml --target json post.json`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		i18n.SetLanguage(lang)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&schemaFile, "schema", "s", "", "YAML schema file")
	rootCmd.PersistentFlags().StringVar(&lang, "lang", "en-us", "message language (en-us, ja)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().BoolVar(&allowDups, "allow-duplicate-keys", false, "accept documents with repeated object keys (last one wins)")
	_ = rootCmd.MarkPersistentFlagRequired("schema")
}

func newLogger() zerolog.Logger {
	lvl, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		lvl = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}

// loadSchema reads and compiles the --schema file.
func loadSchema() (*minimodel.ModelType, error) {
	data, err := os.ReadFile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	logger := newLogger()
	c := minimodel.NewCompiler(minimodel.CompilerOpt{Logger: &logger})
	mt, err := yamlschema.Compile(c, data)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", schemaFile, err)
	}
	logger.Debug().Str("schema", schemaFile).Strs("fields", mt.Schema().Keys()).Msg("schema compiled")
	return mt, nil
}

// readDocuments decodes a JSON object or array of objects, keeping key order.
// list reports whether the input was an array.
func readDocuments(args []string) (docs []*orderedmap.OrderedMap[string, any], list bool, err error) {
	var data []byte
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading document: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if !allowDups {
		dups, err := jsondoc.DuplicateKeys(trimmed, 10)
		if err != nil {
			return nil, false, fmt.Errorf("decoding document: %w", err)
		}
		if len(dups) > 0 {
			msgs := make([]string, len(dups))
			for i, d := range dups {
				msgs[i] = d.String()
			}
			return nil, false, fmt.Errorf("document rejected: %s", strings.Join(msgs, "; "))
		}
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, true, fmt.Errorf("decoding document: %w", err)
		}
		return docs, true, nil
	}
	doc := orderedmap.New[string, any]()
	if err := json.Unmarshal(trimmed, doc); err != nil {
		return nil, false, fmt.Errorf("decoding document: %w", err)
	}
	return []*orderedmap.OrderedMap[string, any]{doc}, false, nil
}

// instantiate builds one model per document.
func instantiate(mt *minimodel.ModelType, docs []*orderedmap.OrderedMap[string, any]) (minimodel.Models, error) {
	ms := make(minimodel.Models, 0, len(docs))
	for i, doc := range docs {
		m, err := mt.New(doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		ms = append(ms, m)
	}
	return ms, nil
}
