package main

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hashnet-labs/hashcheck/internal/challenge"
	"github.com/hashnet-labs/hashcheck/internal/config"
	"github.com/hashnet-labs/hashcheck/internal/kami"
	"github.com/hashnet-labs/hashcheck/internal/scoring"
	chainutils "github.com/hashnet-labs/hashcheck/internal/utils/chainutils"
)

type ScoresFile struct {
	Step   int       `json:"step"`
	Scores []float64 `json:"scores"`
}

type model struct {
	choices         []string
	cursor          int
	selectedIndex   int // single selection index; -1 until chosen
	kamiClient      *kami.Kami
	chainConfig     *config.ChainEnvConfig
	validatorConfig *config.ValidatorEnvConfig
}

func initialModel() *model {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	k, err := kami.NewKami(&cfg.KamiEnvConfig)
	if err != nil {
		fmt.Printf("Error initializing Kami: %v\n", err)
		os.Exit(1)
	}

	return &model{
		choices:         []string{"Submit scores as weights", "Regenerate challenge set", "Show latest block"},
		cursor:          0,
		selectedIndex:   -1,
		chainConfig:     &cfg.ChainEnvConfig,
		validatorConfig: &cfg.ValidatorEnvConfig,
		kamiClient:      k,
	}
}

func (m *model) submitScores() {
	fmt.Println("Submitting scores as weights")
	raw, err := os.ReadFile("scores.json")
	if err != nil {
		fmt.Printf("failed to read scores file: %v\n", err)
		return
	}

	var scores ScoresFile
	if err = sonic.Unmarshal(raw, &scores); err != nil {
		fmt.Printf("failed to unmarshal scores file data: %v\n", err)
		return
	}

	uids := make([]int64, len(scores.Scores))
	for i := range uids {
		uids[i] = int64(i)
	}

	weights := scoring.L1Normalize(chainutils.ClampNegativeWeights(scores.Scores))

	convertedUids, convertedWeights, err := chainutils.ConvertWeightsAndUidsForEmit(uids, weights)
	if err != nil {
		fmt.Printf("Error converting weights and uids: %v\n", err)
		return
	}

	payload := kami.SetWeightsParams{
		Netuid:     m.chainConfig.Netuid,
		Dests:      convertedUids,
		Weights:    convertedWeights,
		VersionKey: 1,
	}

	res, err := m.kamiClient.SetWeights(payload)
	if err != nil {
		fmt.Printf("Error setting weights: %v\n", err)
		return
	}

	fmt.Printf("Successfully set weights with hash: %s\n", res.Data)
}

func (m *model) regenerateChallengeSet() {
	seed := m.validatorConfig.Seed
	lot := m.validatorConfig.ValidationLot
	fmt.Printf("Regenerating challenge set with seed %d and %d keys\n", seed, lot)

	set := challenge.Generate(seed, lot)
	if err := set.Store(challenge.DefaultSetFileName); err != nil {
		fmt.Printf("Error writing challenge set: %v\n", err)
		return
	}

	fmt.Printf("Wrote %d key-hash pairs to %s\n", len(set.Pairs), challenge.DefaultSetFileName)
}

func (m *model) showLatestBlock() {
	res, err := m.kamiClient.GetLatestBlock()
	if err != nil {
		fmt.Printf("Error fetching latest block: %v\n", err)
		return
	}

	fmt.Printf("Latest block: %d (%s)\n", res.Data.BlockNumber, res.Data.ParentHash)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) { //nolint
	switch msg := msg.(type) { //nolint
	case tea.KeyMsg:
		switch msg.String() {
		// These keys should exit the program.
		case "ctrl+c", "q":
			return m, tea.Quit

		// The "up" and "k" keys move the cursor up
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		// The "down" and "j" keys move the cursor down
		case "down", "j":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}

		// The "enter" key confirms the current cursor selection.
		case "enter":
			m.selectedIndex = m.cursor
			switch m.selectedIndex {
			case 0:
				m.submitScores()
			case 1:
				m.regenerateChallengeSet()
			case 2:
				m.showLatestBlock()
			default:
				fmt.Println("Unknown selection")
			}

			return m, tea.Quit
		}
	}

	// Return the updated model to the Bubble Tea runtime for processing.
	// Note that we're not returning a command.
	return m, nil
}

func (m *model) View() string {
	// The header
	s := "Select an option:\n\n"

	// Iterate over our choices
	for i, choice := range m.choices {
		// Is the cursor pointing at this choice?
		cursor := " " // no cursor
		if m.cursor == i {
			cursor = ">" // cursor!
		}

		// Render the row
		s += fmt.Sprintf("%s %s\n", cursor, choice)
	}

	// The footer
	s += "\nPress q to quit.\n"

	// Send the UI for rendering
	return s
}

func (m *model) Init() tea.Cmd {
	// Just return `nil`, which means "no I/O right now, please."
	return nil
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
