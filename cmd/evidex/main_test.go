package main

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func findCommand(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %q not found", name)
	return nil
}

func findStringFlag(t *testing.T, flags []cli.Flag, name string) *cli.StringFlag {
	t.Helper()
	for _, flag := range flags {
		if f, ok := flag.(*cli.StringFlag); ok && f.Name == name {
			return f
		}
	}
	t.Fatalf("string flag %q not found", name)
	return nil
}

func findIntFlag(t *testing.T, flags []cli.Flag, name string) *cli.IntFlag {
	t.Helper()
	for _, flag := range flags {
		if f, ok := flag.(*cli.IntFlag); ok && f.Name == name {
			return f
		}
	}
	t.Fatalf("int flag %q not found", name)
	return nil
}

func TestAppCommands(t *testing.T) {
	app := newApp()

	for _, name := range []string{"ingest", "query", "remove", "documents", "stats", "reindex"} {
		t.Run(name, func(t *testing.T) {
			cmd := findCommand(t, app, name)
			assert.NotNil(t, cmd.Action)
			assert.NotEmpty(t, cmd.Usage)
		})
	}
}

func TestGlobalFlagDefaults(t *testing.T) {
	app := newApp()

	t.Run("db defaults to evidex.db", func(t *testing.T) {
		f := findStringFlag(t, app.Flags, "db")
		assert.Equal(t, "evidex.db", f.Value)
		assert.Contains(t, f.Aliases, "d")
	})

	t.Run("log-level defaults to info", func(t *testing.T) {
		f := findStringFlag(t, app.Flags, "log-level")
		assert.Equal(t, "info", f.Value)
		assert.Contains(t, f.Aliases, "l")
	})

	t.Run("router-table has no default", func(t *testing.T) {
		f := findStringFlag(t, app.Flags, "router-table")
		assert.Empty(t, f.Value)
		assert.False(t, f.Required)
	})

	t.Run("ai-host defaults to local ollama", func(t *testing.T) {
		f := findStringFlag(t, app.Flags, "ai-host")
		assert.Equal(t, "http://localhost:11434/v1", f.Value)
	})

	t.Run("model defaults", func(t *testing.T) {
		assert.Equal(t, "embeddinggemma", findStringFlag(t, app.Flags, "embedding-model").Value)
		assert.Equal(t, "qwen2.5:3b", findStringFlag(t, app.Flags, "generator-model").Value)
		assert.Equal(t, "none", findStringFlag(t, app.Flags, "api-key").Value)
	})
}

func TestQueryCommandFlags(t *testing.T) {
	app := newApp()
	cmd := findCommand(t, app, "query")

	t.Run("answer defaults to off", func(t *testing.T) {
		var answerFlag *cli.BoolFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.BoolFlag); ok && f.Name == "answer" {
				answerFlag = f
				break
			}
		}
		require.NotNil(t, answerFlag)
		assert.False(t, answerFlag.Value)
		assert.Contains(t, answerFlag.Aliases, "a")
	})

	t.Run("doc filter has no default", func(t *testing.T) {
		f := findStringFlag(t, cmd.Flags, "doc")
		assert.Empty(t, f.Value)
	})
}

func TestReindexCommandFlags(t *testing.T) {
	app := newApp()
	cmd := findCommand(t, app, "reindex")

	t.Run("batch-size has default value of 100", func(t *testing.T) {
		assert.Equal(t, 100, findIntFlag(t, cmd.Flags, "batch-size").Value)
	})

	t.Run("report-interval has default value of 100", func(t *testing.T) {
		assert.Equal(t, 100, findIntFlag(t, cmd.Flags, "report-interval").Value)
	})

	t.Run("max-attempts has default value of 3", func(t *testing.T) {
		assert.Equal(t, 3, findIntFlag(t, cmd.Flags, "max-attempts").Value)
	})

	t.Run("retry-delay has default value of 1s", func(t *testing.T) {
		var delayFlag *cli.DurationFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.DurationFlag); ok && f.Name == "retry-delay" {
				delayFlag = f
				break
			}
		}
		require.NotNil(t, delayFlag)
		assert.Equal(t, 1*time.Second, delayFlag.Value)
	})
}

func TestCommandArgumentValidation(t *testing.T) {
	t.Run("ingest requires a file argument", func(t *testing.T) {
		err := newApp().Run([]string{"evidex", "ingest"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "usage: evidex ingest")
	})

	t.Run("query requires a question", func(t *testing.T) {
		err := newApp().Run([]string{"evidex", "query"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "usage: evidex query")
	})

	t.Run("remove requires a doc id", func(t *testing.T) {
		err := newApp().Run([]string{"evidex", "remove"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "usage: evidex remove")
	})

	t.Run("ingest rejects a missing file before touching the database", func(t *testing.T) {
		err := newApp().Run([]string{"evidex", "ingest", "/nonexistent/rulebook.txt"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read")
	})
}

func TestReindexConfigValidation(t *testing.T) {
	t.Run("zero batch-size fails", func(t *testing.T) {
		err := newApp().Run([]string{"evidex", "reindex", "--batch-size", "0"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch-size must be greater than 0")
	})

	t.Run("zero report-interval fails", func(t *testing.T) {
		err := newApp().Run([]string{"evidex", "reindex", "--report-interval", "0"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "report-interval must be greater than 0")
	})

	t.Run("zero max-attempts fails", func(t *testing.T) {
		err := newApp().Run([]string{"evidex", "reindex", "--max-attempts", "0"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max-attempts must be greater than 0")
	})
}

func TestDocumentsCommandEmptyDatabase(t *testing.T) {
	dir := t.TempDir()

	err := newApp().Run([]string{"evidex", "--db", dir, "documents"})
	require.NoError(t, err)
}

func TestStatsCommandEmptyDatabase(t *testing.T) {
	dir := t.TempDir()

	err := newApp().Run([]string{"evidex", "--db", dir, "stats"})
	require.NoError(t, err)
}

func TestReindexCommandEmptyDatabase(t *testing.T) {
	dir := t.TempDir()

	err := newApp().Run([]string{"evidex", "--db", dir, "reindex"})
	require.NoError(t, err)
}

func TestRemoveCommandUnknownDocument(t *testing.T) {
	dir := t.TempDir()

	err := newApp().Run([]string{"evidex", "--db", dir, "remove", "nosuchdoc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record not found")
}

func TestRouterTableFlagRejectsMissingFile(t *testing.T) {
	dir := t.TempDir()

	err := newApp().Run([]string{"evidex", "--db", dir, "--router-table", "/nonexistent/table.toml", "documents"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load router table")
}

func TestSnippet(t *testing.T) {
	t.Run("short text passes through", func(t *testing.T) {
		assert.Equal(t, "a short line", snippet("a  short\n line", 50))
	})

	t.Run("long text is truncated", func(t *testing.T) {
		long := ""
		for i := 0; i < 30; i++ {
			long += "word "
		}
		out := snippet(long, 40)
		assert.Len(t, out, 43)
		assert.Contains(t, out, "...")
	})
}

func TestSectionLabel(t *testing.T) {
	assert.Empty(t, sectionLabel(0, ""))
	assert.Equal(t, " rule 1102", sectionLabel(1102, ""))
	assert.Equal(t, " rule 1102.A", sectionLabel(1102, "A"))
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			t.Run(level, func(t *testing.T) {
				app := newApp()
				app.Commands = nil
				app.Action = func(c *cli.Context) error { return nil }

				err := app.Run([]string{"evidex", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		for _, level := range []string{"DEBUG", "Info", "WaRn", "ERROR"} {
			t.Run(level, func(t *testing.T) {
				app := newApp()
				app.Commands = nil
				app.Action = func(c *cli.Context) error { return nil }

				err := app.Run([]string{"evidex", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		app := newApp()
		app.Commands = nil
		app.Action = func(c *cli.Context) error { return nil }

		err := app.Run([]string{"evidex", "--log-level", "loud"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
		assert.Contains(t, err.Error(), "loud")
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		app := newApp()
		app.Commands = nil
		app.Action = func(c *cli.Context) error {
			assert.Equal(t, "debug", c.String("log-level"))
			return nil
		}

		err := app.Run([]string{"evidex", "-l", "debug"})
		require.NoError(t, err)
	})
}

func TestMain(m *testing.M) {
	// Run tests
	code := m.Run()
	os.Exit(code)
}
