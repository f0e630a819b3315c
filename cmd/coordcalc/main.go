package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/unklstewy/skysentry/pkg/coordinates"
	"github.com/unklstewy/skysentry/pkg/credits"
)

// Interactive bounding-box calculator: enter an antenna position and a
// radius, get the query box, its area in square degrees, and the OpenSky
// credit cost that area falls into. Also shows the largest radius that
// still fits each credit tier at that latitude.

const (
	stageLatitude = iota
	stageLongitude
	stageRadius
	stageResult
)

// Backing off 1 km keeps float rounding from tipping a box into the
// next tier.
const tierSafetyKm = 1.0

type model struct {
	stage       int
	inputBuffer string
	latitude    float64
	longitude   float64
	radiusKm    float64
	err         error
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q":
		if m.stage == stageResult || m.inputBuffer == "" {
			return m, tea.Quit
		}
	case "esc":
		return m, tea.Quit
	case "enter":
		return m.submit(), nil
	case "backspace":
		if len(m.inputBuffer) > 0 {
			m.inputBuffer = m.inputBuffer[:len(m.inputBuffer)-1]
		}
		return m, nil
	case "n":
		if m.stage == stageResult {
			return model{}, nil
		}
	}

	if m.stage != stageResult && len(key.String()) == 1 {
		m.inputBuffer += key.String()
	}
	return m, nil
}

func (m model) submit() model {
	if m.stage == stageResult {
		return model{}
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(m.inputBuffer), 64)
	if err != nil {
		m.err = fmt.Errorf("invalid number: %q", m.inputBuffer)
		m.inputBuffer = ""
		return m
	}
	m.err = nil

	switch m.stage {
	case stageLatitude:
		if value < -90 || value > 90 {
			m.err = fmt.Errorf("latitude must be between -90 and 90")
		} else {
			m.latitude = value
			m.stage = stageLongitude
		}
	case stageLongitude:
		if value < -180 || value > 180 {
			m.err = fmt.Errorf("longitude must be between -180 and 180")
		} else {
			m.longitude = value
			m.stage = stageRadius
		}
	case stageRadius:
		if value <= 0 {
			m.err = fmt.Errorf("radius must be positive")
		} else {
			m.radiusKm = value
			m.stage = stageResult
		}
	}
	m.inputBuffer = ""
	return m
}

func (m model) View() string {
	var s strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)
	promptStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	inputStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	s.WriteString(titleStyle.Render("SKYSENTRY COORDINATE CALCULATOR"))
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n\n")
	}

	if m.stage != stageResult {
		prompts := map[int]string{
			stageLatitude:  "Antenna latitude (decimal degrees):",
			stageLongitude: "Antenna longitude (decimal degrees):",
			stageRadius:    "Coverage radius (km):",
		}
		s.WriteString(promptStyle.Render(prompts[m.stage]))
		s.WriteString("\n")
		s.WriteString(inputStyle.Render("> " + m.inputBuffer + "_"))
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("ENTER: Submit  ESC: Quit"))
		return s.String()
	}

	center := coordinates.Geographic{Latitude: m.latitude, Longitude: m.longitude}
	bbox := coordinates.BoundingBoxAround(center, m.radiusKm)
	area := bbox.AreaSquareDegrees()
	cost := credits.CostForArea(area)

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	s.WriteString(promptStyle.Render(fmt.Sprintf("Bounding box for %.4f, %.4f at %.0f km:", m.latitude, m.longitude, m.radiusKm)))
	s.WriteString("\n\n")
	for _, row := range [][2]string{
		{"Latitude min", fmt.Sprintf("%.6f", bbox.LatMin)},
		{"Latitude max", fmt.Sprintf("%.6f", bbox.LatMax)},
		{"Longitude min", fmt.Sprintf("%.6f", bbox.LonMin)},
		{"Longitude max", fmt.Sprintf("%.6f", bbox.LonMax)},
		{"Area", fmt.Sprintf("%.2f sq deg", area)},
		{"Credit cost", fmt.Sprintf("%d per query", cost)},
	} {
		s.WriteString(labelStyle.Render(row[0]))
		s.WriteString(valueStyle.Render(row[1]))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(promptStyle.Render("Largest radius per credit tier at this latitude:"))
	s.WriteString("\n\n")
	for _, tier := range []struct {
		cost int
		area float64
	}{
		{1, 25},
		{2, 100},
		{3, 400},
	} {
		radius := coordinates.MaxRadiusForArea(m.latitude, tier.area, 0.1) - tierSafetyKm
		if radius < 0 {
			radius = 0
		}
		s.WriteString(labelStyle.Render(fmt.Sprintf("%d credit(s)", tier.cost)))
		s.WriteString(valueStyle.Render(fmt.Sprintf("%.1f km (under %.0f sq deg)", radius, tier.area)))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("N: New calculation  Q: Quit"))
	return s.String()
}

func main() {
	if _, err := tea.NewProgram(model{}).Run(); err != nil {
		log.Fatalf("Calculator error: %v", err)
	}
}
