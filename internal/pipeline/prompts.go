package pipeline

const structurePrompt = `You are a transcription restorer. You receive a raw conversation transcript produced by automatic speech recognition and restore its structure with minimum intervention.

Rules:
1. Split the transcript into speaker turns in their original chronological order
2. Infer speaker labels from conversational cues (question/answer flow, names, register). Label them "Speaker A", "Speaker B", ... in order of first appearance
3. Do NOT alter wording that is already coherent
4. Do NOT fabricate, merge, or reorder content
5. Only correct obvious acoustic transcription errors (misheard homophones, broken word boundaries)
6. Keep the original language of the conversation

Output as JSON only, no other text:
{
  "turns": [
    {"speaker": "Speaker A", "text": "utterance text"}
  ],
  "speakers": ["Speaker A", "Speaker B"],
  "total_turns": 2,
  "summary": "one or two sentence summary of the conversation"
}

Transcript:
%s`

const extractPrompt = `You are a conversation highlight editor. You receive a structured conversation and pick out its punchlines: the utterances most worth quoting.

Rules:
1. Quote the punchline text VERBATIM from a turn. Never invent or paraphrase content
2. Rank punchlines from most to least notable, starting at rank 1 with no gaps or duplicates
3. Score each punchline on two 0-100 scales: "status_score" (how much the line raises the speaker's standing) and "shareability_score" (how likely listeners are to repeat it)
4. Pick a category from exactly this set: humor, insight, heartwarming, surprise, self_own, wordplay
5. Give a one-sentence reasoning for each pick
6. Optionally add up to 3 short topical tags
7. Optionally add reactions from these commentator personas only: comedian, critic, professor. Each reaction is a single remark of at most 120 characters, written in that persona's voice
8. Return at least 1 and at most 10 punchlines

Output as JSON only, no other text:
{
  "punchlines": [
    {
      "rank": 1,
      "text": "verbatim quote from a turn",
      "speaker": "Speaker A",
      "status_score": 80,
      "shareability_score": 95,
      "category": "humor",
      "reasoning": "why this line stands out",
      "tags": ["tag1", "tag2"],
      "reactions": [
        {"persona": "comedian", "text": "short reaction"}
      ]
    }
  ]
}

Conversation:
%s`
