package stabilization

import "github.com/topherchris420/signal-forge-pulse/internal/analysis"

// RepairPrompt is a targeted practice for one drift indicator.
type RepairPrompt struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Actions           []string `json:"actions"`
	Timeframe         string   `json:"timeframe"`
	SuccessIndicators []string `json:"success_indicators"`
}

// Ritual is a structured group practice selected by alert severity.
type Ritual struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Process          []string `json:"process"`
	FacilitatorNotes string   `json:"facilitator_notes"`
	Duration         string   `json:"duration"`
	Frequency        string   `json:"frequency"`
}

// ReframingStrategy is one category of language substitutions.
type ReframingStrategy struct {
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Strategies  []string `json:"strategies"`
}

// repairPromptCatalog maps each known drift indicator to its repair prompt.
// Indicators without an entry are silently dropped. The content is a fixed
// catalog; only score interpolation happens elsewhere.
var repairPromptCatalog = map[string]RepairPrompt{
	analysis.IndicatorMetaphorDecay: {
		Title:       "Metaphor Realignment Protocol",
		Description: "Your team's shared symbolic language is becoming fragmented. Reconnect through intentional metaphor building.",
		Actions: []string{
			"Begin your next team meeting by asking: 'What metaphor best describes our current project state?'",
			"Create a shared visual metaphor board where team members can contribute images that represent the work",
			"Use consistent metaphorical language in communications (e.g., if the project is a 'journey', maintain navigation language)",
			"Establish weekly 'metaphor check-ins' to ensure shared symbolic understanding",
		},
		Timeframe:         "Implement over 2-3 weeks",
		SuccessIndicators: []string{"Increased metaphor consistency", "Shared symbolic vocabulary", "Clearer conceptual alignment"},
	},
	analysis.IndicatorPronounFragmentation: {
		Title:       "Collective Identity Restoration",
		Description: "Language patterns suggest weakening team cohesion. Rebuild collective identity through intentional pronoun practice.",
		Actions: []string{
			"Practice 'we-first' communication in all team updates",
			"Create shared ownership statements: 'We own this challenge together'",
			"Establish team rituals that reinforce collective identity",
			"Replace individual blame language with collective problem-solving language",
		},
		Timeframe:         "Daily practice for 4 weeks",
		SuccessIndicators: []string{"Increased 'we' usage", "Reduced individual isolation language", "Stronger collective ownership"},
	},
	analysis.IndicatorEmotionalInstability: {
		Title:       "Emotional Coherence Protocol",
		Description: "Communication shows emotional fragmentation. Stabilize through structured emotional alignment.",
		Actions: []string{
			"Implement daily emotional weather reports at start of meetings",
			"Create safe spaces for expressing uncertainty without judgment",
			"Establish clear communication protocols for difficult conversations",
			"Practice collective emotional regulation through breathing or grounding exercises",
		},
		Timeframe:         "6-8 weeks of consistent practice",
		SuccessIndicators: []string{"Reduced emotional volatility", "Increased emotional vocabulary", "Better conflict resolution"},
	},
	analysis.IndicatorMissionDrift: {
		Title:       "Mission Reconnection Ritual",
		Description: "Team language is drifting from organizational mission. Restore connection through targeted realignment.",
		Actions: []string{
			"Read the mission statement aloud at the start of each significant meeting",
			"Create personal mission connection statements: 'This work connects to our mission by...'",
			"Develop project milestone language that explicitly references mission elements",
			"Schedule monthly 'mission alignment' discussions",
		},
		Timeframe:         "Ongoing practice, evaluate after 6 weeks",
		SuccessIndicators: []string{"Increased mission vocabulary", "Clearer purpose connection", "Aligned decision-making language"},
	},
	analysis.IndicatorCoherenceBreakdown: {
		Title:       "Narrative Coherence Restoration",
		Description: "Team communications lack coherent storyline. Rebuild shared narrative through structured storytelling.",
		Actions: []string{
			"Establish clear beginning-middle-end structures in project communications",
			"Create shared project story artifacts (timelines, narrative summaries)",
			"Practice collective storytelling in retrospectives",
			"Develop consistent language for describing project phases and milestones",
		},
		Timeframe:         "8-10 weeks of structured practice",
		SuccessIndicators: []string{"Coherent project narratives", "Shared story vocabulary", "Clear temporal language"},
	},
}

var emergencyResetRitual = Ritual{
	Name:        "Emergency Narrative Reset",
	Description: "A structured 2-hour session to rebuild foundational linguistic alignment",
	Process: []string{
		"Silent individual reflection: 'What story are we telling ourselves about this work?'",
		"Pair sharing of individual narratives",
		"Group identification of narrative conflicts and overlaps",
		"Collective creation of new shared story",
		"Commitment ceremony to the new narrative",
	},
	FacilitatorNotes: "Requires neutral facilitator. Focus on story, not blame.",
	Duration:         "2-3 hours",
	Frequency:        "One-time intensive, then monthly check-ins",
}

var namingCeremonyRitual = Ritual{
	Name:        "Naming Ceremony",
	Description: "Collective process to name and claim the current organizational moment",
	Process: []string{
		"Individual writing: 'If this moment had a name, what would it be?'",
		"Small group clustering of similar names/themes",
		"Large group dialogue about emerging themes",
		"Consensus selection of 1-3 names for the current period",
		"Ritual adoption of the chosen names into regular communication",
	},
	FacilitatorNotes: "Names should be descriptive, not evaluative. Focus on what IS, not what should be.",
	Duration:         "90 minutes",
	Frequency:        "Quarterly or during major transitions",
}

var reflectiveQueryRitual = Ritual{
	Name:        "Reflective Query Practice",
	Description: "Regular practice of asking questions that reveal and align symbolic understanding",
	Process: []string{
		"Weekly team question: 'What metaphor captures our current reality?'",
		"Individual reflection before sharing",
		"Group dialogue without immediate problem-solving",
		"Identification of shared vs. divergent symbolic understanding",
		"Agreement on language to use going forward",
	},
	FacilitatorNotes: "Questions are for exploration, not answers. Create psychological safety.",
	Duration:         "30 minutes weekly",
	Frequency:        "Weekly for 8 weeks, then biweekly",
}

var reframingCatalog = []ReframingStrategy{
	{
		Category:    "Temporal Reframing",
		Description: "Shift perspective on time and progress",
		Strategies: []string{
			"Replace 'behind schedule' with 'learning what the timeline really needs'",
			"Replace 'deadline pressure' with 'approaching clarity point'",
			"Replace 'slow progress' with 'thorough foundation building'",
			"Replace 'time crunch' with 'focus intensification'",
		},
	},
	{
		Category:    "Challenge Reframing",
		Description: "Transform problem language into growth language",
		Strategies: []string{
			"Replace 'this is broken' with 'this is showing us what needs attention'",
			"Replace 'we failed' with 'we discovered what doesn't work'",
			"Replace 'it's impossible' with 'we haven't found the path yet'",
			"Replace 'we're stuck' with 'we're in a discovery phase'",
		},
	},
	{
		Category:    "Collective Reframing",
		Description: "Strengthen team identity and shared ownership",
		Strategies: []string{
			"Replace 'your project' with 'our shared work'",
			"Replace 'individual responsibility' with 'collective stewardship'",
			"Replace 'blame assignment' with 'pattern understanding'",
			"Replace 'personal failure' with 'team learning opportunity'",
		},
	},
	{
		Category:    "Purpose Reframing",
		Description: "Reconnect daily work with larger meaning",
		Strategies: []string{
			"Begin status updates with 'In service of [mission], today we...'",
			"Replace 'task completion' with 'mission advancement'",
			"Replace 'work requirements' with 'contribution opportunities'",
			"Replace 'job responsibilities' with 'stewardship commitments'",
		},
	},
}
