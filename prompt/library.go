package prompt

const systemPreamble = `{{ .Identity }}`

var library = map[Role]map[string]*Template{
	RoleEncoder: {
		"default": Must(New("encoder.default", systemPreamble, `# Observation
{{ .Obs }}

# Memory
{{ .Memory | default "No previous steps." }}

Summarize the current state of the browser relevant to the instruction.
Describe what is on the page, what has been accomplished so far, and what is left.
Reply with your summary inside <state></state> tags.`)),
		"opendevin": Must(New("encoder.opendevin", systemPreamble, `# Observation
{{ .Obs | trunc 60000 }}

# History
{{ .Memory | default "No previous steps." }}

Describe the current page state: page layout, key interactive elements with
their bids, and any error messages. Then state which parts of the instruction
are already done.
Reply inside <state></state> tags.`)),
	},
	RolePolicy: {
		"default": Must(New("policy.default", systemPreamble, `# Current State
{{ .State }}

# Memory
{{ .Memory | default "No previous steps." }}

Propose the next high-level step toward the instruction, phrased as an intent
(for example "search for running shoes"). If the task is complete, the intent
should be to send the answer to the user.
Think first inside <think></think> tags, then reply with the intent inside
{{ tag .OutputName "" | replace "></" "> ... </" }} tags.`)),
		"opendevin": Must(New("policy.opendevin", systemPreamble, `# Current State
{{ .State }}

# History
{{ .Memory | default "No previous steps." }}

What should be done next? Consider failed attempts in the history and avoid
repeating them. Keep the intent short and concrete.
Reason inside <think></think>, answer inside <{{ .OutputName }}></{{ .OutputName }}>.`)),
	},
	RoleWorldModel: {
		"default": Must(New("world_model.default", systemPreamble, `# Current State
{{ .State }}

# Memory
{{ .Memory | default "No previous steps." }}

# Proposed {{ .OutputName }}
{{ .Plan }}

Predict the state of the browser after the proposed step is carried out.
Describe the expected page and progress toward the instruction.
Reply inside <next_state></next_state> tags.`)),
	},
	RoleCritic: {
		"default": Must(New("critic.default", systemPreamble, `# State
{{ .State }}

# Memory
{{ .Memory | default "No previous steps." }}

Evaluate the state against the instruction.
Reason inside <think></think>.
Reply with <status>finished</status> if the instruction is fully accomplished,
otherwise <status>in_progress</status>, and with
<on_the_right_track>yes</on_the_right_track> or
<on_the_right_track>no</on_the_right_track>.`)),
	},
	RoleActor: {
		"default": Must(New("actor.default", systemPreamble, `# Observation
{{ .Obs }}

# Current State
{{ .State }}

# Memory
{{ .Memory | default "No previous steps." }}

# Current {{ .OutputName }}
{{ .Plan }}

Choose exactly one action from the action space that carries out the current
{{ .OutputName }}. Reply with the action call inside <action></action> tags.`)),
		"opendevin": Must(New("actor.opendevin", systemPreamble, `# Observation
{{ .Obs | trunc 60000 }}

# Current State
{{ .State }}

# Current {{ .OutputName }}
{{ .Plan }}

Translate the {{ .OutputName }} into a single action call using element bids
from the observation. Reply inside <action></action> tags.`)),
	},
	RoleMemoryUpdate: {
		"default": Must(New("memory_update.default", systemPreamble, `# Memory
{{ .Memory | default "No previous steps." }}

# This Step
{{- range $k, $v := .Step }}
## {{ $k }}
{{ $v }}
{{- end }}

Summarize what was attempted in this step and what was learned, in one or two
sentences that will help future steps. Reply inside <memory_update></memory_update> tags.`)),
	},
}
