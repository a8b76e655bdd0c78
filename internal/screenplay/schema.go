package screenplay

import "google.golang.org/genai"

// ResponseSchema returns the structured-output schema the scene structuring
// call constrains the model with. The shape is a compatibility contract:
// genre and scene_heading are required strings, elements is an optional
// ordered array whose entries are one of the four element object shapes
// distinguished by a required "type" string.
func ResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeObject,
		Title:       "Screenplay Scene",
		Description: "A structured representation of a screenplay scene",
		Required:    []string{"scene_heading", "genre"},
		Properties: map[string]*genai.Schema{
			"genre": {
				Type:        genai.TypeString,
				Description: "The movie genre",
			},
			"scene_heading": {
				Type:        genai.TypeString,
				Description: "Standard screenplay scene heading (e.g., 'INT. COFFEE SHOP - DAY')",
			},
			"elements": {
				Type:        genai.TypeArray,
				Description: "An ordered list of the elements in the script",
				Items: &genai.Schema{
					Description: "An item in the script",
					AnyOf: []*genai.Schema{
						visualSchema(),
						soundSchema(),
						sceneEndingSchema(),
						dialogueSchema(),
					},
				},
			},
		},
	}
}

func visualSchema() *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeObject,
		Title:       "Visual",
		Description: "Describes anything visually perceived by the audience",
		Properties: map[string]*genai.Schema{
			"type": {
				Type:        genai.TypeString,
				Description: "Always 'visual'",
			},
			"visual": {
				Type:        genai.TypeString,
				Description: "The description",
			},
		},
		PropertyOrdering: []string{"type", "visual"},
		Required:         []string{"type", "visual"},
	}
}

func soundSchema() *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeObject,
		Title:       "Sound",
		Description: "Specifies a sound effect or ambient sound",
		Properties: map[string]*genai.Schema{
			"type": {
				Type:        genai.TypeString,
				Description: "Always 'sound'",
			},
			"sound": {
				Type:        genai.TypeString,
				Description: "The sound description (e.g., 'The clatter of cups and saucers').",
			},
		},
		PropertyOrdering: []string{"type", "sound"},
		Required:         []string{"type", "sound"},
	}
}

func sceneEndingSchema() *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeObject,
		Title:       "Scene ending",
		Description: "The scene ending transition",
		Properties: map[string]*genai.Schema{
			"type": {
				Type:        genai.TypeString,
				Description: "Always 'scene_ending'",
			},
			"transition": {
				Type:        genai.TypeString,
				Description: "The scene ending transition (for example 'FADE TO BLACK')",
			},
		},
		PropertyOrdering: []string{"type", "transition"},
		Required:         []string{"type", "transition"},
	}
}

func dialogueSchema() *genai.Schema {
	return &genai.Schema{
		Type:  genai.TypeObject,
		Title: "Dialogue",
		Properties: map[string]*genai.Schema{
			"type": {
				Type:        genai.TypeString,
				Description: "Always 'dialogue'",
			},
			"character": {
				Type:        genai.TypeString,
				Description: "The name of the character speaking",
			},
			"line": {
				Type:        genai.TypeString,
				Description: "The dialogue spoken by the character",
			},
			"manner": {
				Type:        genai.TypeString,
				Description: "Describes the way the character delivers the dialogue line. Examples include 'Excitedly,' 'Sadly,' 'Angrily,' 'Quietly,' 'Thoughtfully,' 'Sarcastically,'",
			},
		},
		PropertyOrdering: []string{"type", "character", "line", "manner"},
		Required:         []string{"type", "character", "line"},
	}
}
