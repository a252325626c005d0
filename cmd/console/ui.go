package main

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/haggle/internal/handlers"
	"github.com/jwebster45206/haggle/pkg/negotiation"
)

const (
	ClientName      = "Client"
	PlaceHolderText = "Make your offer..."
)

type entryKind int

const (
	entryClient entryKind = iota
	entryPlayer
	entryNotice
	entryError
	entryBanner
	entrySeparator
)

// logEntry is one line of the running transcript. The transcript spans
// every client of the game, unlike the server's per-client conversation.
type logEntry struct {
	kind entryKind
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	api          *apiClient
	session      *handlers.SessionView
	transcript   []logEntry
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	spinner      spinner.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Shop selection state
	showShopModal bool
	shops         []string
	shopMap       map[string]string
	selectedShop  int
	loadingShops  bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type shopsLoadedMsg struct {
	shops   []string
	shopMap map[string]string
	err     error
}

type sessionCreatedMsg struct {
	session *handlers.SessionView
	err     error
}

// turnMsg answers a chat message or a server-side command.
type turnMsg struct {
	command string
	turn    *handlers.TurnView
	err     error
}

type sessionMsg struct {
	session *handlers.SessionView
	err     error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	clientStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")). // green
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")). // teal
			Bold(true)

	priceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fcb103")). // amber
			Bold(true)

	gainStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ff00"))

	lossStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff0000"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // grey
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			Padding(0, 2).
			Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

// priceRegex matches numbers a client may quote, with optional grouping
// and decimals.
var priceRegex = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?`)

func NewConsoleUI(api *apiClient) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = loadingStyle

	return ConsoleUI{
		api:           api,
		textarea:      ta,
		chatViewport:  chatVp,
		metaViewport:  metaVp,
		spinner:       sp,
		showShopModal: true,
		loadingShops:  true,
	}
}

// highlightPrices renders every number in s in bold amber.
func highlightPrices(s string) string {
	return priceRegex.ReplaceAllStringFunc(s, func(n string) string {
		return priceStyle.Render(n)
	})
}

// dealValueStyle is red when selling at the offer would not profit.
func dealValueStyle(v float64) lipgloss.Style {
	if v <= 0 {
		return lossStyle
	}
	return gainStyle
}

// clientNumber is the 1-based index of the client at the counter, or of
// the last one served.
func clientNumber(s *handlers.SessionView) int {
	n := s.Progress.ClientCount
	if s.State == negotiation.StateClientActive {
		n++
	}
	return n
}

func writeLedger(s *handlers.SessionView, width int) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("LEDGER") + "\n\n")

	content.WriteString("Shop:\n")
	content.WriteString(s.Shop + "\n\n")

	content.WriteString("Client:\n")
	content.WriteString(fmt.Sprintf("%d of %d\n\n", clientNumber(s), s.Progress.MaxClients))

	content.WriteString("Gains:\n")
	gains := negotiation.FormatPrice(s.Progress.Gains)
	if s.Progress.Gains >= s.Progress.NeededGains {
		gains = gainStyle.Render(gains)
	}
	content.WriteString(fmt.Sprintf("%s / %s\n", gains, negotiation.FormatPrice(s.Progress.NeededGains)))
	content.WriteString(fmt.Sprintf("%d deals made\n\n", s.Progress.MadeDeals))

	if s.Item != nil {
		content.WriteString(titleStyle.Render("ITEM") + "\n\n")
		content.WriteString(s.Item.Name + "\n")
		if s.Item.Description != "" && width > 0 {
			content.WriteString(noticeStyle.Render(wordwrap.String(s.Item.Description, width)) + "\n")
		}
		content.WriteString("\n")
		content.WriteString("Offer:\n")
		content.WriteString(priceStyle.Render(negotiation.FormatPrice(s.Item.ClientOffer)) + "\n\n")
		content.WriteString("Market value:\n")
		content.WriteString(negotiation.FormatPrice(s.Item.MarketValue) + "\n\n")
		content.WriteString("Deal value:\n")
		content.WriteString(dealValueStyle(s.DealValue).Render(negotiation.FormatPrice(s.DealValue)) + "\n\n")
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /next: Next client\n")
	content.WriteString("• /ledger: Summary\n")
	content.WriteString("• /copy: Copy log\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• Ctrl+C: Quit\n")

	return content.String()
}

func (m *ConsoleUI) appendEntry(kind entryKind, text string) {
	m.transcript = append(m.transcript, logEntry{kind: kind, text: text})
}

// introduceClient logs the arrival of the client at the counter.
func (m *ConsoleUI) introduceClient() {
	if m.session == nil || m.session.Item == nil {
		return
	}
	s := m.session
	if len(m.transcript) > 0 {
		m.appendEntry(entrySeparator, "")
	}
	m.appendEntry(entryNotice, fmt.Sprintf("Client %d of %d brings %s.", clientNumber(s), s.Progress.MaxClients, s.Item.Name))
	for _, msg := range s.Conversation {
		if msg.Role == "assistant" {
			m.appendEntry(entryClient, msg.Content)
		}
	}
}

// writeChatContent renders the transcript for the current viewport width
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding
	if chatWidth < 20 {
		chatWidth = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("HAGGLE") + "\n\n")
	content.WriteString("Buy low. Every client brings one item; make the deal or let them walk.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth-6)) + "\n\n")

	for _, e := range m.transcript {
		switch e.kind {
		case entryClient:
			prefix := ClientName + ": "
			body := wordwrap.String(e.text, chatWidth-len(prefix))
			content.WriteString(clientStyle.Render(prefix) + highlightPrices(body) + "\n\n")
		case entryPlayer:
			prefix := "You: "
			content.WriteString(userStyle.Render(prefix) + wordwrap.String(e.text, chatWidth-len(prefix)) + "\n\n")
		case entryNotice:
			content.WriteString(noticeStyle.Render(wordwrap.String(e.text, chatWidth)) + "\n\n")
		case entryError:
			content.WriteString(errorStyle.Render("Error: "+wordwrap.String(e.text, chatWidth-7)) + "\n\n")
		case entryBanner:
			content.WriteString(bannerStyle.Render(e.text) + "\n\n")
		case entrySeparator:
			content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth-6)) + "\n\n")
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) refreshLedger() {
	if m.session != nil {
		m.metaViewport.SetContent(writeLedger(m.session, m.metaViewport.Width-2))
	}
}

// resize lays out the chat and ledger panels for the current window.
func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

// transcriptText is the plain-text log copied by /copy.
func (m ConsoleUI) transcriptText() string {
	var sb strings.Builder
	for _, e := range m.transcript {
		switch e.kind {
		case entryClient:
			sb.WriteString(ClientName + ": " + e.text + "\n\n")
		case entryPlayer:
			sb.WriteString("You: " + e.text + "\n\n")
		case entrySeparator:
			sb.WriteString("---\n\n")
		case entryError:
			continue
		default:
			sb.WriteString(e.text + "\n\n")
		}
	}
	return strings.TrimSpace(sb.String())
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(m.loadShops(), m.spinner.Tick)
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showShopModal {
		return m.updateShopModal(msg)
	}
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.writeChatContent()
		m.refreshLedger()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			// No input while a turn is in flight or nobody is at the counter.
			if m.loading || m.session == nil || !m.session.AcceptsInput {
				return m, nil
			}

			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0
			m.appendEntry(entryPlayer, input)
			m.writeChatContent()
			return m, tea.Batch(m.sendChat("", input), progressTick())
		}

	case turnMsg:
		m.loading = false
		m.handleTurn(msg)
		m.writeChatContent()
		m.refreshLedger()
		if msg.err != nil {
			return m, m.refreshSession()
		}
		return m, nil

	case sessionMsg:
		// Resync after a failure; the server state is authoritative.
		if msg.err == nil {
			m.session = msg.session
			m.refreshLedger()
		}
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
		return m, nil
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// handleTurn records the result of a chat message or command.
func (m *ConsoleUI) handleTurn(msg turnMsg) {
	if msg.err != nil {
		m.appendEntry(entryError, msg.err.Error())
		return
	}

	m.session = &msg.turn.Session

	switch msg.command {
	case "/ledger":
		m.appendEntry(entryNotice, msg.turn.Reply)
		return
	case "/next":
		m.introduceClient()
		return
	}

	m.appendEntry(entryClient, msg.turn.Reply)

	switch msg.turn.Resolution {
	case negotiation.ResolutionClosed:
		price := negotiation.FormatPrice(0)
		if m.session.Item != nil {
			price = negotiation.FormatPrice(m.session.Item.ClientOffer)
		}
		m.appendEntry(entryNotice, fmt.Sprintf("Deal closed at %s. Type /next for the next client.", price))
	case negotiation.ResolutionCancelled:
		m.appendEntry(entryNotice, "The client walked out. Type /next for the next client.")
	}

	if o := m.session.Outcome; o != nil {
		m.appendEntry(entryBanner, fmt.Sprintf("GAME OVER  %s  Gains: %s / %s",
			o.Status,
			negotiation.FormatPrice(m.session.Progress.Gains),
			negotiation.FormatPrice(m.session.Progress.NeededGains)))
	}
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))
	m.textarea.Reset()

	switch cmd {
	case "/help":
		m.appendEntry(entryNotice, `Commands:
• /next - Bring in the next client
• /ledger - Summarize the game so far
• /copy - Copy the transcript to the clipboard
• /quit - Leave the shop

How to play:
• Each client wants to sell you one item
• Talk them down, then agree on a price to buy
• Push too hard and they leave`)

	case "/copy":
		if err := clipboard.WriteAll(m.transcriptText()); err != nil {
			m.appendEntry(entryError, "failed to copy transcript: "+err.Error())
		} else {
			m.appendEntry(entryNotice, "Transcript copied to clipboard.")
		}

	case "/quit":
		m.showQuitModal = true
		return m, nil

	case "/next", "/ledger":
		if m.loading || m.session == nil {
			return m, nil
		}
		m.loading = true
		m.progressTick = 0
		m.writeChatContent()
		return m, tea.Batch(m.sendChat(cmd, cmd), progressTick())

	default:
		m.appendEntry(entryError, fmt.Sprintf("unknown command %s, try /help", cmd))
	}

	m.writeChatContent()
	return m, nil
}

func (m ConsoleUI) sendChat(command, message string) tea.Cmd {
	id := m.session.ID
	return func() tea.Msg {
		turn, err := m.api.sendChat(id, message)
		return turnMsg{command: command, turn: turn, err: err}
	}
}

func (m ConsoleUI) refreshSession() tea.Cmd {
	if m.session == nil {
		return nil
	}
	id := m.session.ID
	return func() tea.Msg {
		s, err := m.api.getSession(id)
		return sessionMsg{s, err}
	}
}

func (m ConsoleUI) loadShops() tea.Cmd {
	return func() tea.Msg {
		names, shopMap, err := m.api.listShops()
		return shopsLoadedMsg{names, shopMap, err}
	}
}

// createSession opens the shop. If the first client failed to arrive the
// session still exists, so it is fetched and the error shown in the log.
func (m ConsoleUI) createSession(shopFile string) tea.Cmd {
	return func() tea.Msg {
		s, err := m.api.createSession(shopFile)
		if err == nil {
			return sessionCreatedMsg{session: s}
		}
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.SessionID != "" {
			if id, perr := uuid.Parse(apiErr.SessionID); perr == nil {
				if s, gerr := m.api.getSession(id); gerr == nil {
					return sessionCreatedMsg{session: s, err: err}
				}
			}
		}
		return sessionCreatedMsg{err: err}
	}
}

func (m ConsoleUI) updateShopModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case shopsLoadedMsg:
		m.loadingShops = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.shops = msg.shops
			m.shopMap = msg.shopMap
		}

	case sessionCreatedMsg:
		m.loading = false
		if msg.session == nil {
			m.err = msg.err
			return m, nil
		}

		m.session = msg.session
		m.showShopModal = false
		if m.width > 0 && m.height > 0 {
			m.resize()
		}
		m.introduceClient()
		if msg.err != nil {
			m.appendEntry(entryError, msg.err.Error()+" Type /next to try again.")
		}
		m.writeChatContent()
		m.refreshLedger()
		m.textarea.Focus()
		m.ready = true
		return m, textarea.Blink

	case tea.KeyMsg:
		if m.loadingShops || m.err != nil {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.selectedShop > 0 {
				m.selectedShop--
			}
		case tea.KeyDown:
			if m.selectedShop < len(m.shops)-1 {
				m.selectedShop++
			}
		case tea.KeyEnter:
			if len(m.shops) > 0 && !m.loading {
				m.loading = true
				return m, tea.Batch(m.createSession(m.shopMap[m.shops[m.selectedShop]]), m.spinner.Tick)
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case turnMsg, sessionMsg, progressTickMsg:
		// A reply landed while the modal was open.
		m.showQuitModal = false
		model, cmd := m.Update(msg)
		next := model.(ConsoleUI)
		next.showQuitModal = true
		return next, cmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Close Shop?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to leave the shop?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderShopModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	switch {
	case m.loadingShops:
		content.WriteString(modalTitleStyle.Render("Loading Shops..."))
		content.WriteString("\n\n")
		content.WriteString(m.spinner.View() + loadingStyle.Render(" Fetching available shops..."))
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(m.err.Error()))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	case m.loading:
		content.WriteString(modalTitleStyle.Render("Opening Shop..."))
		content.WriteString("\n\n")
		content.WriteString(m.spinner.View() + loadingStyle.Render(" Waiting for the first client..."))
	default:
		content.WriteString(modalTitleStyle.Render("Select a Shop"))
		content.WriteString("\n\n")

		for i, name := range m.shops {
			if i == m.selectedShop {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", name)))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", name)))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showShopModal {
		return m.renderShopModal()
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", chatWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
