package utils

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
)

// SelectPrompt returns the selected item. The process exits if the prompt is aborted
func SelectPrompt(prompt *promptui.Select) string {
	_, res, err := prompt.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Aborting")
		os.Exit(1)
	}
	return res
}
