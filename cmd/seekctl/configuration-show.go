package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/seek-in-go/pkg/config"
)

// configSection groups related attributes in the text output
type configSection struct {
	name       string
	attributes []string
}

var configSections = []configSection{
	{"general", []string{"site_base_host", "api_version", "is_virtualliver", "pubmed_api_email", "crossref_api_email"}},
	{"programmes", []string{"programmes_enabled", "allow_user_programme_creation"}},
	{"search", []string{"search_enabled", "external_search_enabled", "faceted_search_enabled", "search_page_size", "search_index_url"}},
	{"blob", []string{"blob_driver", "blob_path", "s3_bucket", "s3_region", "s3_endpoint", "s3_path_style"}},
	{"sessions", []string{"redis_url", "session_token_ttl", "session_secret", "rate_limit_rps", "rate_limit_burst", "trusted_proxies"}},
	{"jobs", []string{"reindex_schedule", "auth_lookup_schedule"}},
}

var configurationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show catalog configuration grouped by concern",
	Long: `Show the catalog configuration attributes and where each value came from.

Attributes are grouped into sections:

  general     site host, API version and the PubMed/CrossRef contact emails
  programmes  whether programmes exist and who may create them
  search      the search index (Weaviate URL), page size, faceted and
              external search switches
  blob        content blob storage: the "file" driver stores under
              blob_path, the "s3" driver uses the bucket, region and endpoint
  sessions    Redis, session token lifetime and request rate limits
  jobs        cron schedules for reindexing and auth lookup refresh

Values are read from seek.yml (SEEK_CONFIG_PATH overrides the location,
default /etc/seek/config/seek.yml) and SEEK_* environment variables such
as SEEK_SEARCH_INDEX_URL or SEEK_BLOB_DRIVER. A running server only picks
up changes on restart.

Example:
  seekctl configuration show
  seekctl configuration show --section search
  seekctl configuration show --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		section, _ := cmd.Flags().GetString("section")

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		if err := printConfiguration(os.Stdout, cfg, output, section); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to show configuration: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	configurationCmd.AddCommand(configurationShowCmd)
	configurationShowCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	configurationShowCmd.Flags().StringP("section", "s", "", "Only show one section (general, programmes, search, blob, sessions, jobs)")
}

func printConfiguration(out io.Writer, cfg *config.SeekConfig, output, section string) error {
	sections := configSections
	if section != "" {
		match, ok := lo.Find(configSections, func(s configSection) bool { return s.name == section })
		if !ok {
			return fmt.Errorf("unknown section %q", section)
		}
		sections = []configSection{match}
	}

	if output == "json" {
		if section != "" {
			return fmt.Errorf("--section is only supported with text output")
		}
		jsonOutput, err := cfg.FormatJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, jsonOutput)
		return nil
	}

	attrs := lo.KeyBy(cfg.Attributes(), func(a config.Attribute) string { return a.Name })

	fmt.Fprintf(out, "Search:       %s\n", searchSummary(cfg))
	fmt.Fprintf(out, "Blob storage: %s\n", blobSummary(cfg))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, s := range sections {
		fmt.Fprintf(w, "\n[%s]\n", s.name)
		for _, name := range s.attributes {
			a := attrs[name]
			value := a.Value
			if value == "" {
				value = "(not set)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", name, value, a.Source)
		}
	}
	return w.Flush()
}

func searchSummary(cfg *config.SeekConfig) string {
	if !cfg.SearchEnabled {
		return "disabled"
	}
	var extras []string
	if cfg.FacetedSearchEnabled {
		extras = append(extras, "faceted")
	}
	if cfg.ExternalSearchEnabled {
		extras = append(extras, "external")
	}
	summary := cfg.SearchIndexURL
	if summary == "" {
		summary = "(no index url)"
	}
	if len(extras) > 0 {
		summary += " [" + strings.Join(extras, ", ") + "]"
	}
	return summary
}

func blobSummary(cfg *config.SeekConfig) string {
	switch cfg.BlobDriver {
	case "s3":
		summary := "s3://" + cfg.S3Bucket
		if cfg.S3Endpoint != "" {
			summary += " via " + cfg.S3Endpoint
		}
		return summary
	default:
		return "file:" + cfg.BlobPath
	}
}
