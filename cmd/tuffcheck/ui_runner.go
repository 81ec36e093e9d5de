package main

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"tuff/internal/driver"
	"tuff/internal/ui"
)

// runCheckWithUI runs check in the background and shows its progress on out
// until check returns.
func runCheckWithUI(out io.Writer, title string, units []string, check func(driver.ProgressSink) error) error {
	events := make(chan driver.Event, 256)
	outcome := make(chan error, 1)

	go func() {
		err := check(driver.ChannelSink{Ch: events})
		close(events)
		outcome <- err
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, units, events), tea.WithOutput(out))
	_, uiErr := program.Run()
	// the view may quit early (ctrl+c); keep draining so workers never block
	go func() {
		for range events {
		}
	}()
	err := <-outcome
	if err != nil {
		return err
	}
	return uiErr
}
