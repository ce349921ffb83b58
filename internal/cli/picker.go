package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/valter-silva-au/taskgraph/pkg/models"
)

// runClaimPicker shows the ready list and claims whichever task the user
// selects. The claim can still lose to a concurrent worker, in which case
// the loss is reported instead of retried.
func runClaimPicker(holder, project string) error {
	ready, err := Tasks.Ready(project)
	if err != nil {
		return fmt.Errorf("deriving ready tasks: %w", err)
	}
	var candidates []*models.Task
	for _, t := range ready {
		if t.Assignee != "" && t.Assignee != holder {
			continue
		}
		candidates = append(candidates, t)
	}
	if len(candidates) == 0 {
		fmt.Println("Nothing claimable.")
		return nil
	}

	m := pickerModel{tasks: candidates, holder: holder}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return fmt.Errorf("running picker: %w", err)
	}

	result := final.(pickerModel)
	if result.choice == nil {
		fmt.Println("No task selected.")
		return nil
	}

	task, ok, err := Tasks.ClaimTask(result.choice.ID, holder)
	if err != nil {
		return fmt.Errorf("claiming task: %w", err)
	}
	if !ok {
		fmt.Printf("Lost the race for %s, try again.\n", result.choice.ID)
		return nil
	}
	fmt.Printf("Claimed %s (%s) for %s\n", task.ID, task.Title, holder)
	return nil
}

type pickerModel struct {
	tasks  []*models.Task
	cursor int
	holder string
	choice *models.Task
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.tasks)-1 {
				m.cursor++
			}
		case "enter":
			m.choice = m.tasks[m.cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	s := headerStyle.Render(fmt.Sprintf("Ready tasks (%s)", m.holder)) + "\n\n"
	for i, t := range m.tasks {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		s += fmt.Sprintf("%s%s %s [%s] %s\n",
			cursor, renderPriority(t.Priority), idStyle.Render(t.ID), renderStatus(t.Status), t.Title)
	}
	s += "\n" + helpStyle.Render("up/down: move, enter: claim, q: quit") + "\n"
	return s
}
