// Package main is the entry point for storyweaver.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/yshim/storyweaver/internal/app"
	"github.com/yshim/storyweaver/internal/assist"
	"github.com/yshim/storyweaver/internal/character"
	"github.com/yshim/storyweaver/internal/project"
	"github.com/yshim/storyweaver/internal/search"
	"github.com/yshim/storyweaver/internal/storage"
	"github.com/yshim/storyweaver/internal/tui"
	"github.com/yshim/storyweaver/internal/tui/styles"
	"github.com/yshim/storyweaver/internal/wizard"
	"github.com/yshim/storyweaver/pkg/types"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.ErrorText.Render(err.Error()))
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "storyweaver",
	Short: "A terminal wizard for authoring visual novel stories",
	Long: `Storyweaver is a terminal-based tool for authoring visual novel story
projects. It manages project metadata and rich character profiles on
disk as plain JSON, and offers AI-assisted suggestions through a local
or cloud LLM when one is available.`,
	Version: version,
}

// printSuccess and friends keep command output consistent.
func printSuccess(msg string) { fmt.Println(styles.SuccessText.Render(msg)) }
func printWarning(msg string) { fmt.Println(styles.WarningText.Render(msg)) }
func printInfo(msg string)    { fmt.Println(styles.MutedText.Render(msg)) }

// resolveProjectPath validates that the current directory is a project.
func resolveProjectPath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if ok, _ := project.Validate(cwd); !ok {
		return "", fmt.Errorf("no valid project found in current directory\n" +
			"Use 'storyweaver init <name>' to create a new project, or cd into an existing project directory")
	}
	return cwd, nil
}

// projectGenre reads the genre of the current project, defaulting to
// "general" outside a valid project.
func projectGenre(path string) string {
	record, err := project.Open(path)
	if err != nil {
		return "general"
	}
	return record.Genre
}

// newAssistant builds the configured generation assistant. A nil
// assistant means all AI features silently fall back to manual entry.
func newAssistant(ctx context.Context) *assist.Assistant {
	application, err := app.New()
	if err != nil {
		return nil
	}
	assistant, err := application.Assistant(ctx)
	if err != nil {
		printWarning("AI assistance unavailable: " + err.Error())
		return nil
	}
	return assistant
}

// syncSearchIndex updates the full-text index after a character
// mutation. Search is derived data, so failures only warn.
func syncSearchIndex(projectPath string, c *types.Character) {
	engine, err := search.Open(projectPath)
	if err != nil {
		printWarning("search index update failed: " + err.Error())
		return
	}
	defer engine.Close()
	if err := engine.IndexCharacter(c); err != nil {
		printWarning("search index update failed: " + err.Error())
	}
}

// init command

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Initialize a new story project",
	Long: `Initialize a new story project.

Creates a project directory containing story.json and the story_data
skeleton. Name, genre, and synopsis are prompted for when not given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInitCmd,
}

func runInitCmd(cmd *cobra.Command, args []string) error {
	var name string
	if len(args) > 0 {
		name = args[0]
	}
	genre, _ := cmd.Flags().GetString("genre")
	synopsis, _ := cmd.Flags().GetString("synopsis")
	parentDir, _ := cmd.Flags().GetString("path")

	if parentDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		parentDir = cwd
	}

	var groups []*huh.Group
	if name == "" {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Validate(nonEmpty("project name")).
				Value(&name),
		))
	}
	if genre == "" {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("Genre").
				Description("Examples: romance, mystery, fantasy, sci-fi, horror, drama").
				Validate(nonEmpty("genre")).
				Value(&genre),
		))
	}
	if synopsis == "" {
		groups = append(groups, huh.NewGroup(
			huh.NewText().
				Title("Synopsis").
				Description("Briefly describe your story (1-3 sentences).").
				CharLimit(types.MaxSynopsisLen).
				Validate(nonEmpty("synopsis")).
				Value(&synopsis),
		))
	}
	if len(groups) > 0 {
		if err := huh.NewForm(groups...).Run(); err != nil {
			return fmt.Errorf("project setup failed: %w", err)
		}
	}

	createdPath, err := project.Create(name, genre, synopsis, parentDir)
	if err != nil {
		var verr *types.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("invalid project data: %w", verr)
		}
		if errors.Is(err, project.ErrProjectExists) {
			return fmt.Errorf("project already exists at %s", filepath.Join(parentDir, storage.SanitizeName(strings.TrimSpace(name))))
		}
		return err
	}

	printSuccess(fmt.Sprintf("Created project %q at %s", name, createdPath))
	fmt.Println()
	printInfo("Next steps:")
	printInfo(fmt.Sprintf("  cd %s", filepath.Base(createdPath)))
	printInfo("  storyweaver new character   Create your first character")
	printInfo("  storyweaver chat            Brainstorm with AI")
	return nil
}

// open command

var openCmd = &cobra.Command{
	Use:   "open [path]",
	Short: "Open and summarize an existing project",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runOpenCmd,
}

func runOpenCmd(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	summary, err := project.GetSummary(abs)
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			return fmt.Errorf("no project found at %s\nTo create a new project, use 'storyweaver init <name>'", abs)
		}
		var invalid *project.InvalidProjectError
		if errors.As(err, &invalid) {
			var b strings.Builder
			fmt.Fprintf(&b, "invalid project at %s:\n", abs)
			for _, p := range invalid.Problems {
				fmt.Fprintf(&b, "  - %s\n", p)
			}
			b.WriteString("the project structure may be corrupted or incomplete")
			return errors.New(b.String())
		}
		return err
	}

	printSuccess(fmt.Sprintf("Opened project: %s", summary.Name))
	fmt.Println()
	fmt.Println(styles.FieldName.Render("Genre") + styles.FieldValue.Render(summary.Genre))
	fmt.Println(styles.FieldName.Render("Synopsis") + styles.FieldValue.Render(summary.Synopsis))
	fmt.Println(styles.FieldName.Render("Characters") + styles.FieldValue.Render(fmt.Sprintf("%d", summary.CharacterCount)))
	fmt.Println(styles.FieldName.Render("Modified") + styles.FieldValue.Render(summary.LastModified.Format("2006-01-02 15:04")))
	return nil
}

// chat command

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the AI about your story",
	Long: `Chat with the AI about your story.

When run inside a project directory, the project's name, genre, and
synopsis are loaded as conversation context. Type 'exit' to leave and
'clear' to reset the transcript.`,
	RunE: runChatCmd,
}

func runChatCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var projectContext string
	if cwd, err := os.Getwd(); err == nil {
		if record, err := project.Open(cwd); err == nil {
			projectContext = assist.ProjectContext(record)
		}
	}
	if projectContext != "" {
		printInfo("Project context detected and loaded.")
	} else {
		printWarning("No project context (not in a project directory).")
	}

	assistant := newAssistant(ctx)
	if assistant == nil {
		return errors.New("no LLM provider configured")
	}
	if !assistant.Available(ctx) {
		return errors.New("LLM service is not available\n" +
			"Check that your model server is running, or set STORY_OLLAMA_HOST")
	}

	model := tui.NewChatModel(assistant, projectContext)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat error: %w", err)
	}
	return nil
}

// find command

var findCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Search characters by full-text query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFindCmd,
}

func runFindCmd(cmd *cobra.Command, args []string) error {
	projectPath, err := resolveProjectPath()
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	engine, err := search.Open(projectPath)
	if err != nil {
		return err
	}
	defer engine.Close()

	results, err := engine.Search(strings.Join(args, " "), limit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		printInfo("No matches. Run 'storyweaver reindex' if characters were edited outside the wizard.")
		return nil
	}

	for _, r := range results {
		fmt.Println(styles.Title.Render(r.Name) + styles.MutedText.Render(" ("+r.Role+")"))
		fmt.Println(styles.ListItem.Render(r.Snippet))
	}
	return nil
}

// reindex command

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the character index and search database",
	Long: `Rebuild the character index and search database.

Scans every character directory and reconstructs both
characters_index.json and the full-text search index from the record
files, skipping any that fail to parse.`,
	RunE: runReindexCmd,
}

func runReindexCmd(cmd *cobra.Command, args []string) error {
	projectPath, err := resolveProjectPath()
	if err != nil {
		return err
	}

	svc := character.NewService(projectPath)
	if err := svc.RebuildIndex(); err != nil {
		return err
	}

	listings, err := svc.List("")
	if err != nil {
		return err
	}

	var characters []*types.Character
	for _, l := range listings {
		if c, err := svc.Get(l.Name); err == nil {
			characters = append(characters, c)
		}
	}

	engine, err := search.Open(projectPath)
	if err != nil {
		return err
	}
	defer engine.Close()
	if err := engine.Reindex(characters); err != nil {
		return err
	}

	printSuccess(fmt.Sprintf("Reindexed %d characters.", len(characters)))
	return nil
}

// new character

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create project content",
}

var newCharacterCmd = &cobra.Command{
	Use:   "character",
	Short: "Create a new character through the guided wizard",
	Long: `Create a new character through the guided wizard.

Walks through 5 phases: basics, appearance, personality, backstory,
and relationships. AI suggestions are offered when an LLM is
reachable; every AI step can be skipped or answered manually.`,
	RunE: runNewCharacterCmd,
}

func runNewCharacterCmd(cmd *cobra.Command, args []string) error {
	projectPath, err := resolveProjectPath()
	if err != nil {
		return err
	}
	prefill, _ := cmd.Flags().GetString("name")
	notesPath, _ := cmd.Flags().GetString("notes")

	var notes *wizard.Notes
	if notesPath != "" {
		notes, err = wizard.ParseNotesFile(notesPath)
		if err != nil {
			return err
		}
	}

	ctx := context.Background()
	svc := character.NewService(projectPath)
	w := wizard.New(svc, newAssistant(ctx), projectGenre(projectPath))

	fmt.Println(styles.Title.Render("Character Creation Wizard"))
	printInfo("Press Esc at any time to cancel.")

	c, err := w.Run(ctx, prefill, notes)
	if err != nil {
		if errors.Is(err, character.ErrCharacterExists) {
			return fmt.Errorf("%w\nUse 'storyweaver edit character' to modify existing characters", err)
		}
		if errors.Is(err, huh.ErrUserAborted) {
			printWarning("Character creation cancelled.")
			return nil
		}
		return err
	}

	save, err := wizard.ConfirmSave(c)
	if err != nil {
		return err
	}
	if !save {
		printWarning("Character creation cancelled.")
		return nil
	}

	if _, err := svc.Create(c); err != nil {
		return err
	}
	syncSearchIndex(projectPath, c)

	printSuccess(fmt.Sprintf("Character %q created.", c.Basics.Name))
	if c.LoraTrigger != "" {
		printInfo("LoRA trigger: " + c.LoraTrigger)
	}
	return nil
}

// edit character

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit project content",
}

var editCharacterCmd = &cobra.Command{
	Use:   "character <name>",
	Short: "Edit an existing character",
	Long: `Edit an existing character.

Re-runs one wizard phase over the stored record. Use --phase to jump
directly to a section, or pick one from the menu.`,
	Args: cobra.ExactArgs(1),
	RunE: runEditCharacterCmd,
}

func runEditCharacterCmd(cmd *cobra.Command, args []string) error {
	projectPath, err := resolveProjectPath()
	if err != nil {
		return err
	}
	phase, _ := cmd.Flags().GetString("phase")

	svc := character.NewService(projectPath)
	c, err := svc.Get(args[0])
	if err != nil {
		return err
	}

	fmt.Println(styles.Title.Render("Editing: " + c.Basics.Name))
	fmt.Println(wizard.RenderReview(c))

	if phase == "" {
		const done = "save and exit"
		options := []huh.Option[string]{
			huh.NewOption("Basics (name, age, gender, role)", wizard.PhaseBasics),
			huh.NewOption("Appearance", wizard.PhaseAppearance),
			huh.NewOption("Personality", wizard.PhasePersonality),
			huh.NewOption("Backstory", wizard.PhaseBackstory),
			huh.NewOption("Relationships", wizard.PhaseRelationships),
			huh.NewOption("Save and exit", done),
		}
		form := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("Edit which section?").
				Options(options...).
				Value(&phase),
		))
		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				printWarning("Edit cancelled.")
				return nil
			}
			return err
		}
		if phase == done {
			printInfo("No changes made.")
			return nil
		}
	}

	ctx := context.Background()
	w := wizard.New(svc, newAssistant(ctx), projectGenre(projectPath))
	if err := w.EditPhase(ctx, c, phase); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			printWarning("Edit cancelled.")
			return nil
		}
		return err
	}

	if err := svc.Update(c); err != nil {
		return err
	}
	syncSearchIndex(projectPath, c)

	printSuccess(fmt.Sprintf("Character %q updated.", c.Basics.Name))
	return nil
}

// list characters

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List project content",
}

var listCharactersCmd = &cobra.Command{
	Use:     "characters",
	Aliases: []string{"character"},
	Short:   "List all characters in the project",
	RunE:    runListCharactersCmd,
}

func runListCharactersCmd(cmd *cobra.Command, args []string) error {
	projectPath, err := resolveProjectPath()
	if err != nil {
		return err
	}
	role, _ := cmd.Flags().GetString("role")
	asJSON, _ := cmd.Flags().GetBool("json")

	svc := character.NewService(projectPath)
	listings, err := svc.List(role)
	if err != nil {
		return err
	}

	if asJSON {
		if listings == nil {
			listings = []character.Listing{}
		}
		data, err := json.MarshalIndent(listings, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if len(listings) == 0 {
		if role != "" {
			printInfo(fmt.Sprintf("No characters with role %q.", role))
		} else {
			printInfo("No characters found. Use 'storyweaver new character' to create one.")
		}
		return nil
	}

	fmt.Println(styles.Title.Render("Characters"))
	for _, l := range listings {
		age := "-"
		if l.Age != nil {
			age = fmt.Sprintf("%d", *l.Age)
		}
		fmt.Printf("  %-24s %-14s %4s  %3d%%\n", l.Name, l.Role, age, l.Completion)
	}
	return nil
}

// delete character

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete project content",
}

var deleteCharacterCmd = &cobra.Command{
	Use:   "character <name>",
	Short: "Delete a character from the project",
	Long: `Delete a character from the project.

Deletion is blocked when other characters hold relationships to the
target; --force removes those relationships and deletes anyway.`,
	Args: cobra.ExactArgs(1),
	RunE: runDeleteCharacterCmd,
}

func runDeleteCharacterCmd(cmd *cobra.Command, args []string) error {
	projectPath, err := resolveProjectPath()
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")
	name := args[0]

	svc := character.NewService(projectPath)
	c, err := svc.Get(name)
	if err != nil {
		return err
	}

	dependents, err := svc.RelationshipDependencies(name)
	if err != nil {
		return err
	}
	if len(dependents) > 0 && !force {
		var b strings.Builder
		fmt.Fprintf(&b, "character %q is referenced by other characters:\n", name)
		for _, dep := range dependents {
			fmt.Fprintf(&b, "  - %s\n", dep)
		}
		b.WriteString("use --force to delete anyway (will remove those relationships)")
		return errors.New(b.String())
	}

	fmt.Println(styles.Title.Render("Delete character: " + c.Basics.Name))
	printInfo(fmt.Sprintf("  Role: %s", c.Basics.Role))
	printInfo(fmt.Sprintf("  Completion: %d%%", c.CompletionPercentage()))
	if len(dependents) > 0 {
		printWarning("This will remove relationships from: " + strings.Join(dependents, ", "))
	}

	confirmed := false
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Are you sure you want to delete this character?").
			Value(&confirmed),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			printInfo("Deletion cancelled.")
			return nil
		}
		return err
	}
	if !confirmed {
		printInfo("Deletion cancelled.")
		return nil
	}

	affected, err := svc.Delete(name, force)
	if err != nil {
		return err
	}

	if engine, serr := search.Open(projectPath); serr == nil {
		engine.Remove(c.Basics.Name)
		engine.Close()
	}

	printSuccess(fmt.Sprintf("Character %q deleted.", name))
	if len(affected) > 0 {
		printInfo("Removed relationships from: " + strings.Join(affected, ", "))
	}
	return nil
}

func nonEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

func init() {
	initCmd.Flags().StringP("genre", "g", "", "Story genre (e.g., romance, mystery, fantasy)")
	initCmd.Flags().StringP("synopsis", "s", "", "Brief story synopsis")
	initCmd.Flags().StringP("path", "p", "", "Parent directory for the project (default: current directory)")

	findCmd.Flags().Int("limit", 10, "Maximum number of results")

	newCharacterCmd.Flags().StringP("name", "n", "", "Pre-fill character name")
	newCharacterCmd.Flags().String("notes", "", "Markdown notes file to seed the backstory")
	newCmd.AddCommand(newCharacterCmd)

	editCharacterCmd.Flags().StringP("phase", "p", "", "Jump directly to a phase (basics, appearance, personality, backstory, relationships)")
	editCmd.AddCommand(editCharacterCmd)

	listCharactersCmd.Flags().StringP("role", "r", "", "Filter by role (protagonist, antagonist, etc.)")
	listCharactersCmd.Flags().Bool("json", false, "Output as JSON")
	listCmd.AddCommand(listCharactersCmd)

	deleteCharacterCmd.Flags().BoolP("force", "f", false, "Force delete even with relationships")
	deleteCmd.AddCommand(deleteCharacterCmd)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
}
