package usecase

import (
	"fmt"
	"strings"

	"portfolio-site/internal/domain"
)

const noResponseText = "I'm sorry, I couldn't generate a response at this time."

func buildContextPrompt(p domain.ProfileFacts, question string) string {
	lines := []string{
		fmt.Sprintf("You are an AI assistant for %s%s.", p.Name, titleSuffix(p)),
		"",
		fmt.Sprintf("About %s:", p.Name),
	}
	if p.Title != "" {
		lines = append(lines, "- "+p.Title)
	}
	if len(p.Experience) > 0 && p.Experience[0].Company != "" {
		lines = append(lines, "- Currently works at "+p.Experience[0].Company)
	}
	if len(p.Education) > 0 && p.Education[0].Degree != "" {
		edu := "- Currently studying " + p.Education[0].Degree
		if p.Education[0].Institution != "" {
			edu += " at " + p.Education[0].Institution
		}
		lines = append(lines, edu)
	}
	if len(p.Skills) > 0 {
		lines = append(lines, "- Skills include: "+strings.Join(p.Skills, ", "))
	}
	if p.Contact.Email != "" {
		lines = append(lines, "- Email: "+p.Contact.Email)
	}
	if p.Contact.Phone != "" {
		lines = append(lines, "- Phone: "+p.Contact.Phone)
	}
	lines = append(lines,
		"",
		fmt.Sprintf("Answer the following question about %s in a helpful, professional manner.", p.Name),
		"Keep responses concise but informative.",
		fmt.Sprintf("If the user asks how to contact %s, provide the email and phone number.", p.Name),
		"",
		"Question: "+question,
	)
	return strings.Join(lines, "\n")
}

func contactAnswer(p domain.ProfileFacts) string {
	lines := []string{fmt.Sprintf("You can contact %s via:", p.Name), ""}
	if p.Contact.Email != "" {
		lines = append(lines, "📧 **Email:** "+p.Contact.Email)
	}
	if p.Contact.Phone != "" {
		lines = append(lines, "📱 **Phone:** "+p.Contact.Phone)
	}
	if p.Contact.LinkedIn != "" {
		lines = append(lines, "🔗 **LinkedIn:** "+p.Contact.LinkedIn)
	}
	if p.Contact.GitHub != "" {
		lines = append(lines, "🔗 **GitHub:** "+p.Contact.GitHub)
	}
	lines = append(lines, "",
		fmt.Sprintf("%s typically responds within 24 hours and is always happy to discuss potential projects or opportunities.", p.Name))
	return strings.Join(lines, "\n")
}

func fallbackResponses(p domain.ProfileFacts) []string {
	summary := p.Name + titleSuffix(p) + "."
	if len(p.Experience) > 0 && p.Experience[0].Company != "" {
		summary += " Currently working at " + p.Experience[0].Company + "."
	}
	reach := reachFragment(p)
	if reach != "" {
		summary += " To get in touch, " + reach + "."
	} else {
		reach = "use the contact form on this site"
	}
	return []string{
		"I apologize, but I'm having trouble connecting to my knowledge base right now. Please try again in a moment.",
		summary,
		fmt.Sprintf("I can tell you about %s's skills, projects, and experience. Try asking about one of those!", p.Name),
		fmt.Sprintf("If you need to get in touch with %s, please %s.", p.Name, reach),
	}
}

func titleSuffix(p domain.ProfileFacts) string {
	if p.Title == "" {
		return ""
	}
	return " (" + p.Title + ")"
}

func reachFragment(p domain.ProfileFacts) string {
	switch {
	case p.Contact.Email != "" && p.Contact.Phone != "":
		return fmt.Sprintf("email %s or call %s", p.Contact.Email, p.Contact.Phone)
	case p.Contact.Email != "":
		return "email " + p.Contact.Email
	case p.Contact.Phone != "":
		return "call " + p.Contact.Phone
	default:
		return ""
	}
}
