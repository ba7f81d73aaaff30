package config

const (
	agentName        = "Web Browsing Agent"
	agentDescription = `An information and automation assistant who responds to user instructions by browsing the internet. The assistant strives to answer each question accurately, thoroughly, efficiently, and politely, and to be forthright when it is impossible to answer the question or carry out the instruction. The assistant will end the task once it sends a message to the user.`

	browsingErrorMessage = "send_msg_to_user('Error encountered when browsing.')"
)

var defaultSearch = Search{
	NumActions:       20,
	Depth:            1,
	CriticNumSamples: 20,
	Algorithm:        "beam",
	BeamWidth:        1,
	Concurrency:      4,
}

var browsergym = Config{
	Name:               "browsergym",
	Environment:        "browsergym",
	AgentName:          agentName,
	AgentDescription:   agentDescription,
	EncoderPromptType:  "default",
	PolicyPromptType:   "default",
	ActorPromptType:    "default",
	MemoryType:         "step_key_value",
	PlannerType:        "policy",
	PolicyOutputName:   "plan",
	ModuleErrorMessage: browsingErrorMessage,
	UseNav:             true,
	Search:             defaultSearch,
}

var opendevin = Config{
	Name:               "opendevin",
	Environment:        "opendevin",
	AgentName:          agentName,
	AgentDescription:   agentDescription,
	EncoderPromptType:  "opendevin",
	PolicyPromptType:   "opendevin",
	ActorPromptType:    "opendevin",
	MemoryPromptType:   "default",
	MemoryType:         "step_prompted",
	PlannerType:        "policy",
	PolicyOutputName:   "intent",
	ModuleErrorMessage: browsingErrorMessage,
	UseNav:             true,
	TruncateAXTree:     true,
	Search:             defaultSearch,
}

func withWorldModel(c Config, name string) Config {
	c.Name = name
	c.PlannerType = "world_model"
	c.WorldModelPromptType = "default"
	c.CriticPromptType = "default"
	return c
}

func named(c Config, name string) Config {
	c.Name = name
	return c
}

func webarena() Config {
	c := named(opendevin, "webarena")
	c.EvalMode = true
	c.UseNav = false
	return c
}

var library = map[string]Config{
	"browsergym":             browsergym,
	"browsergym_world_model": withWorldModel(browsergym, "browsergym_world_model"),
	"opendevin":              opendevin,
	"opendevin_llama":        named(opendevin, "opendevin_llama"),
	"opendevin_world_model":  withWorldModel(opendevin, "opendevin_world_model"),
	"webarena":               webarena(),
	"webarena_world_model":   withWorldModel(webarena(), "webarena_world_model"),
}
