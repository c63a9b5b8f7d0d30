package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/buger/goterm"
	"github.com/chzyer/readline"
	"github.com/fatih/color"
)

// HistoryFile keeps prompts across sessions.
const HistoryFile = "/tmp/specchat.history"

var (
	userInputColor = color.New(color.FgWhite)
	replyColor     = color.New(color.FgCyan)
	titleColor     = color.New(color.FgMagenta, color.Bold)
	separatorColor = color.New(color.FgHiBlack)
	costColor      = color.New(color.FgYellow)
	promptColor    = color.New(color.FgHiBlue)
	errorColor     = color.New(color.FgRed)
)

// Width of the terminal.
func Width() int {
	if width := goterm.Width(); width > 0 {
		return width
	}
	return 80
}

// Separator printed to cli.
func Separator() {
	separatorColor.Println(strings.Repeat("-", Width()))
}

// Title printed to cli.
func Title(text string, args ...any) {
	width := Width()
	title := "      " + fmt.Sprintf(text, args...) + "      "
	leftWidth := max((width-len(title))/2, 0)
	left := strings.Repeat("-", leftWidth)
	right := strings.Repeat("-", max(width-len(title)-leftWidth, 0))
	titleColor.Println(left + title + right)
}

// UserInput printed to cli.
func UserInput(text string, args ...any) {
	userInputColor.Printf(text, args...)
}

// Reply prints model output verbatim.
func Reply(text string) {
	replyColor.Print(text)
}

// CostInfo printed to cli.
func CostInfo(text string, args ...any) {
	costColor.Printf(text, args...)
}

// Error printed to cli.
func Error(text string, args ...any) {
	errorColor.Printf(text, args...)
}

// PromptUser for input. Lines are read until Ctrl+J or an interrupt.
func PromptUser() (string, error) {
	exit := false
	config := &readline.Config{
		Prompt:            promptColor.Sprint("> "),
		InterruptPrompt:   "^C",
		HistoryFile:       HistoryFile,
		HistorySearchFold: true,
		FuncFilterInputRune: func(r rune) (rune, bool) {
			if r == '\x0A' { // Ctrl + J
				exit = true
			}
			return r, true
		},
	}

	rl, err := readline.NewEx(config)
	if err != nil {
		return "", err
	}
	defer rl.Close()
	var lines []string
	for {
		line, err := rl.Readline()
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
		if exit {
			break
		}
		rl.SetPrompt("")
	}
	return strings.Join(lines, "\n"), nil
}

// QueryUser a yes/no question.
func QueryUser(question string) bool {
	surveyQuestion := &survey.Confirm{
		Message: question,
	}
	confirm := false
	survey.AskOne(surveyQuestion, &confirm)
	return confirm
}
