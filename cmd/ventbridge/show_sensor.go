package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/airnode/ventbridge/pkg/bridge"
	"github.com/airnode/ventbridge/pkg/wire"
)

var (
	showSensorFollow bool
	showSensorType   string
)

var showSensorCmd = &cobra.Command{
	Use:   "show-sensor <pdid>",
	Short: "Show a single sensor's value, optionally following live updates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireHostFlag(cmd); err != nil {
			return err
		}
		pdid64, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("pdid: %w", err)
		}
		pdid := uint32(pdid64)

		b, cleanup, err := connectedBridge(hostFlag)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer cleanup()

		typeTag := wire.TypeInt16
		if entry, ok := b.Catalog().Lookup(pdid); ok {
			typeTag = entry.Type
		}
		if showSensorType != "" {
			typeTag, err = wire.ParseTypeTag(showSensorType)
			if err != nil {
				return err
			}
		}

		if !showSensorFollow {
			ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
			defer cancel()
			valueCh := make(chan any, 1)
			if err := b.Subscribe(ctx, pdid, typeTag, func(_ uint32, value any) {
				select {
				case valueCh <- value:
				default:
				}
			}, true); err != nil {
				return fmt.Errorf("subscribe: %w", err)
			}
			select {
			case v := <-valueCh:
				fmt.Println(v)
			case <-ctx.Done():
				fmt.Println("no reading received")
			}
			return nil
		}

		m := newSensorModel(b, pdid, typeTag)
		p := tea.NewProgram(m)
		_, err = p.Run()
		return err
	},
}

func init() {
	showSensorCmd.Flags().StringVar(&hostFlag, "host", "", "bridge address, host:port")
	showSensorCmd.Flags().BoolVarP(&showSensorFollow, "follow", "f", false, "keep the subscription open and show live updates")
	showSensorCmd.Flags().StringVar(&showSensorType, "type", "", "override the decoded type tag (BOOL, UINT8, UINT16, UINT32, INT8, INT16, INT64, STRING, TIME, VERSION)")
}

// sensorReadingMsg carries one decoded value from the PDO subscription
// into the Bubble Tea update loop.
type sensorReadingMsg struct{ value any }

type sensorModel struct {
	b       *bridge.Bridge
	pdid    uint32
	typeTag wire.TypeTag
	readCh  chan any
	last    any
	count   int
}

func newSensorModel(b *bridge.Bridge, pdid uint32, typeTag wire.TypeTag) sensorModel {
	return sensorModel{b: b, pdid: pdid, typeTag: typeTag, readCh: make(chan any, 16)}
}

func (m sensorModel) Init() tea.Cmd {
	return tea.Batch(m.subscribe(), m.waitForReading())
}

func (m sensorModel) subscribe() tea.Cmd {
	return func() tea.Msg {
		_ = m.b.Subscribe(context.Background(), m.pdid, m.typeTag, func(_ uint32, value any) {
			select {
			case m.readCh <- value:
			default:
			}
		}, true)
		return nil
	}
}

func (m sensorModel) waitForReading() tea.Cmd {
	return func() tea.Msg {
		return sensorReadingMsg{value: <-m.readCh}
	}
}

func (m sensorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sensorReadingMsg:
		m.last = msg.value
		m.count++
		return m, m.waitForReading()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	}
	return m, nil
}

var sensorLabelStyle = lipgloss.NewStyle().Bold(true)

func (m sensorModel) View() string {
	label := sensorLabelStyle.Render(fmt.Sprintf("pdid %d", m.pdid))
	if m.count == 0 {
		return fmt.Sprintf("%s\nwaiting for first reading... (q to quit)\n", label)
	}
	return fmt.Sprintf("%s\nvalue: %v\nupdates received: %d\n(q to quit)\n", label, m.last, m.count)
}
