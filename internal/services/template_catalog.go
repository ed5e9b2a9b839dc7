package services

import (
	"github.com/automationos/automationos/internal/models"
)

// DefaultTemplates returns the starter workflow templates loaded by the seed
// command. A fresh slice is built on every call so callers may modify it.
func DefaultTemplates() []models.Template {
	return []models.Template{
		{
			Name:        "Email to Slack Notification",
			Description: "Forward important emails to a Slack channel",
			Category:    "Communication",
			Tags:        []string{"email", "slack", "notifications"},
			IsPublic:    true,
			Definition: models.Definition{
				Nodes: []models.Node{
					{ID: "trigger", Type: "trigger", Data: data{"provider": "gmail", "event": "new_email"}},
					{ID: "filter", Type: "filter", Data: data{"condition": `subject contains "urgent"`}},
					{ID: "action", Type: "action", Data: data{"provider": "slack", "action": "send_message"}},
				},
				Edges: chain("trigger", "filter", "action"),
			},
		},
		{
			Name:        "Shopify Order to Google Sheets",
			Description: "Log new Shopify orders to a Google Sheet",
			Category:    "E-commerce",
			Tags:        []string{"shopify", "google-sheets", "orders"},
			IsPublic:    true,
			Definition: models.Definition{
				Nodes: []models.Node{
					{ID: "trigger", Type: "trigger", Data: data{"provider": "shopify", "event": "order_created"}},
					{ID: "transform", Type: "transform", Data: data{"mapping": data{"order_id": "$.id", "total": "$.total_price"}}},
					{ID: "action", Type: "action", Data: data{"provider": "google-sheets", "action": "append_row"}},
				},
				Edges: chain("trigger", "transform", "action"),
			},
		},
		{
			Name:        "Daily Sales Report",
			Description: "Generate and email daily sales summary",
			Category:    "Analytics",
			Tags:        []string{"reporting", "email", "analytics"},
			IsPublic:    true,
			Definition: models.Definition{
				Nodes: []models.Node{
					{ID: "trigger", Type: "trigger", Data: data{"type": "schedule", "cron": "0 9 * * *"}},
					{ID: "fetch", Type: "action", Data: data{"provider": "stripe", "action": "get_transactions"}},
					{ID: "aggregate", Type: "transform", Data: data{"operation": "sum", "field": "amount"}},
					{ID: "email", Type: "action", Data: data{"provider": "gmail", "action": "send_email"}},
				},
				Edges: chain("trigger", "fetch", "aggregate", "email"),
			},
		},
		{
			Name:        "Customer Onboarding Flow",
			Description: "Automated welcome sequence for new customers",
			Category:    "CRM",
			Tags:        []string{"onboarding", "email", "crm"},
			IsPublic:    true,
			Definition: models.Definition{
				Nodes: []models.Node{
					{ID: "trigger", Type: "trigger", Data: data{"provider": "stripe", "event": "customer_created"}},
					{ID: "welcome_email", Type: "action", Data: data{"provider": "sendgrid", "action": "send_email", "template": "welcome"}},
					{ID: "delay", Type: "delay", Data: data{"duration": "1 day"}},
					{ID: "followup_email", Type: "action", Data: data{"provider": "sendgrid", "action": "send_email", "template": "getting_started"}},
				},
				Edges: chain("trigger", "welcome_email", "delay", "followup_email"),
			},
		},
		{
			Name:        "Social Media Cross-Posting",
			Description: "Post content across multiple social platforms",
			Category:    "Marketing",
			Tags:        []string{"social-media", "marketing", "automation"},
			IsPublic:    true,
			Definition: models.Definition{
				Nodes: []models.Node{
					{ID: "trigger", Type: "trigger", Data: data{"type": "manual"}},
					{ID: "twitter", Type: "action", Data: data{"provider": "twitter", "action": "post_tweet"}},
					{ID: "linkedin", Type: "action", Data: data{"provider": "linkedin", "action": "create_post"}},
					{ID: "facebook", Type: "action", Data: data{"provider": "facebook", "action": "create_post"}},
				},
				Edges: []models.Edge{
					{Source: "trigger", Target: "twitter"},
					{Source: "trigger", Target: "linkedin"},
					{Source: "trigger", Target: "facebook"},
				},
			},
		},
		{
			Name:        "Invoice Payment Reminder",
			Description: "Send reminders for overdue invoices",
			Category:    "Finance",
			Tags:        []string{"invoicing", "reminders", "payments"},
			IsPublic:    true,
			Definition: models.Definition{
				Nodes: []models.Node{
					{ID: "trigger", Type: "trigger", Data: data{"type": "schedule", "cron": "0 10 * * *"}},
					{ID: "fetch_overdue", Type: "action", Data: data{"provider": "stripe", "action": "get_overdue_invoices"}},
					{ID: "loop", Type: "loop", Data: data{"iterate": "invoices"}},
					{ID: "send_reminder", Type: "action", Data: data{"provider": "gmail", "action": "send_email", "template": "payment_reminder"}},
				},
				Edges: chain("trigger", "fetch_overdue", "loop", "send_reminder"),
			},
		},
		{
			Name:        "Lead Capture to CRM",
			Description: "Add form submissions to CRM automatically",
			Category:    "Sales",
			Tags:        []string{"leads", "crm", "forms"},
			IsPublic:    true,
			Definition: models.Definition{
				Nodes: []models.Node{
					{ID: "trigger", Type: "trigger", Data: data{"type": "webhook"}},
					{ID: "validate", Type: "transform", Data: data{"validation": data{"email": "required|email", "name": "required"}}},
					{ID: "create_contact", Type: "action", Data: data{"provider": "hubspot", "action": "create_contact"}},
					{ID: "notify_sales", Type: "action", Data: data{"provider": "slack", "action": "send_message", "channel": "#sales"}},
				},
				Edges: chain("trigger", "validate", "create_contact", "notify_sales"),
			},
		},
	}
}

type data = map[string]interface{}

// chain links the given node ids one after the other
func chain(ids ...string) []models.Edge {
	edges := make([]models.Edge, 0, len(ids)-1)
	for i := 1; i < len(ids); i++ {
		edges = append(edges, models.Edge{Source: ids[i-1], Target: ids[i]})
	}
	return edges
}
