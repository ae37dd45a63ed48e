package queue

import "fmt"

type TaskType string

const (
	TaskInvoicesOverdue   TaskType = "invoices.overdue"
	TaskPlansExpire       TaskType = "plans.expire"
	TaskSessionsPurge     TaskType = "sessions.purge"
	TaskInvitationsExpire TaskType = "invitations.expire"
	TaskNotify            TaskType = "notify"
)

// Task is one unit of background work. Notify tasks address either a single
// user or all admins of an organization.
type Task struct {
	ID             string
	Type           TaskType
	UserID         string
	OrganizationID string
	Title          string
	Body           string
	Kind           string
}

// Values flattens the task into stream fields.
func (t Task) Values() map[string]any {
	values := map[string]any{"type": string(t.Type)}
	set := func(key, value string) {
		if value != "" {
			values[key] = value
		}
	}
	set("userId", t.UserID)
	set("organizationId", t.OrganizationID)
	set("title", t.Title)
	set("body", t.Body)
	set("kind", t.Kind)
	return values
}

// Decode reads a task back from stream fields. id is the stream entry id.
func Decode(id string, values map[string]any) (Task, error) {
	str := func(key string) string {
		v, ok := values[key]
		if !ok {
			return ""
		}
		switch s := v.(type) {
		case string:
			return s
		case []byte:
			return string(s)
		default:
			return fmt.Sprint(s)
		}
	}

	task := Task{
		ID:             id,
		Type:           TaskType(str("type")),
		UserID:         str("userId"),
		OrganizationID: str("organizationId"),
		Title:          str("title"),
		Body:           str("body"),
		Kind:           str("kind"),
	}
	if task.Type == "" {
		return Task{}, fmt.Errorf("task %s: missing type", id)
	}
	return task, nil
}
