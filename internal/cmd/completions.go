package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/kubegen/internal/config"
	"github.com/cameronsjo/kubegen/internal/manifest"
	"github.com/cameronsjo/kubegen/internal/versions"
)

// completionConfig loads configuration for shell completion, where
// PersistentPreRunE does not run.
func completionConfig(cmd *cobra.Command) *config.Config {
	if cfg != nil {
		return cfg
	}
	loaded, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil
	}
	return loaded
}

// completeVersions completes saved version tags.
func completeVersions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Don't complete if we already have an argument
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	c := completionConfig(cmd)
	if c == nil {
		return nil, cobra.ShellCompDirectiveError
	}

	idx, err := versions.NewStore(c).List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	seen := make(map[string]bool)
	var tags []string
	for _, file := range idx.Files() {
		for _, v := range idx[file] {
			if !seen[v] && strings.HasPrefix(v, toComplete) {
				seen[v] = true
				tags = append(tags, v)
			}
		}
	}
	versions.SortVersions(tags)

	return tags, cobra.ShellCompDirectiveNoFileComp
}

// completeTemplateFiles completes template files in the templates directory,
// falling back to regular file completion.
func completeTemplateFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	c := completionConfig(cmd)
	if c == nil {
		return nil, cobra.ShellCompDirectiveDefault
	}

	entries, err := os.ReadDir(c.TemplatesDir)
	if err != nil {
		return nil, cobra.ShellCompDirectiveDefault
	}

	wd, _ := os.Getwd()
	var names []string
	for _, e := range entries {
		if e.IsDir() || manifest.OutputName(e.Name()) == e.Name() {
			continue
		}
		path := filepath.Join(c.TemplatesDir, e.Name())
		if rel, err := filepath.Rel(wd, path); err == nil && wd != "" {
			path = rel
		}
		if strings.HasPrefix(path, toComplete) {
			names = append(names, path)
		}
	}
	if len(names) == 0 {
		return nil, cobra.ShellCompDirectiveDefault
	}

	return names, cobra.ShellCompDirectiveNoFileComp
}
