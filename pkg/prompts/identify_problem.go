// Package prompts builds the LLM prompts used by sheet-engine.
package prompts

import "fmt"

// IdentifyProblem builds the prompt asking the model to match a video title
// to a specific LeetCode problem. The model must answer with a bare JSON
// object; a null-fields object with confidence 0 means "no match".
func IdentifyProblem(videoTitle string) string {
	return fmt.Sprintf(`Match this YouTube DSA video title to exact LeetCode problem. Return ONLY a valid JSON object (no markdown, no explanation):
{
  "title": "string - the exact LeetCode problem title",
  "titleSlug": "string - the LeetCode URL slug (e.g. two-sum)",
  "difficulty": "string - Easy | Medium | Hard",
  "confidence": number between 0 and 1
}

If you cannot identify a specific LeetCode problem, return:
{ "title": null, "titleSlug": null, "difficulty": null, "confidence": 0 }

Title: %s`, videoTitle)
}
