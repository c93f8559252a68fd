package corpus

// tinyNotationGrammar is the Lark grammar for a single tiny-notation call:
// note(pitch=C4, duration=4), rest(duration=4), or
// chord(pitches="C4 E4 G4", duration=4). Duration is a music21-style code
// (1=whole, 2=half, 4=quarter, 8=eighth, 16=sixteenth); omitted defaults to
// quarter. One call per Execute, mirroring Arranger DSL's single-statement
// grammar — TinyNotationParser tokenizes the wider line itself and executes
// one call per token.
const tinyNotationGrammar = `
start: statement

statement: note_call
         | rest_call
         | chord_call

note_call: "note" "(" note_params ")"
note_params: note_named_param ("," SP note_named_param)*
note_named_param: "pitch" "=" PITCH
                | "duration" "=" NUMBER

rest_call: "rest" "(" rest_params ")"
rest_params: rest_named_param
rest_named_param: "duration" "=" NUMBER

chord_call: "chord" "(" chord_params ")"
chord_params: chord_named_param ("," SP chord_named_param)*
chord_named_param: "pitches" "=" STRING
                  | "duration" "=" NUMBER

PITCH: /[A-G](#|-)*[0-9]+/
SP: " "+
STRING: /"[^"]*"/
NUMBER: /[0-9]+/
`
