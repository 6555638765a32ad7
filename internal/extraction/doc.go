// Package extraction turns free text or a URL into a list of extracted items.
//
// Text goes straight to the LLM. URLs are first fetched and flattened into a
// short page summary: YouTube links through the kkdai/youtube client, every
// other page through an HTTP GET parsed with goquery. The model answers with a
// JSON item list that is normalized into content.ExtractedItem values. Any
// failure is reported as *Error, whose message is meant to be shown to the
// user unchanged.
package extraction
