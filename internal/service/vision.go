package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// ErrNoAPIKey is returned by CalculateNutrition when the user has no vision
// provider credential stored. Identification degrades to a fallback instead,
// but a missing key is a configuration problem the user must fix in
// settings, so the second call reports it loudly.
var ErrNoAPIKey = errors.New("vision provider API key not configured")

// IdentifiedItem is a single food item recognized in a photo, as edited on
// the review screen before nutrition is calculated.
type IdentifiedItem struct {
	Name          string `json:"name"`
	Quantity      string `json:"quantity"`
	EstimatedSize string `json:"estimated_size"`
	Confidence    int    `json:"confidence"`
}

// IdentifyResult is the outcome of the first provider call. Degraded marks
// results synthesized from the fallback rather than the provider; callers
// that badge low-confidence data can inspect it, everyone else can use the
// items either way.
type IdentifyResult struct {
	Items          []IdentifiedItem `json:"items"`
	Confidence     int              `json:"confidence"`
	Degraded       bool             `json:"degraded"`
	Reason         string           `json:"reason,omitempty"`
	ProcessingTime string           `json:"processing_time"`
}

// NutrientEstimate holds per-item macro grams from the provider.
type NutrientEstimate struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
	Fiber   float64 `json:"fiber"`
}

// FoodEstimate is one item's nutrition as returned by the provider. Weight
// is free text ("250g") and is parsed downstream.
type FoodEstimate struct {
	Name       string           `json:"name"`
	Calories   float64          `json:"calories"`
	Weight     string           `json:"weight"`
	Confidence int              `json:"confidence"`
	Nutrients  NutrientEstimate `json:"nutrients"`
}

// NutritionResult is the outcome of the second provider call.
type NutritionResult struct {
	FoodItems        []FoodEstimate   `json:"foodItems"`
	TotalCalories    float64          `json:"totalCalories"`
	TotalWeight      string           `json:"totalWeight"`
	Confidence       int              `json:"confidence"`
	NutritionSummary NutrientEstimate `json:"nutritionSummary"`
	Degraded         bool             `json:"degraded"`
	Reason           string           `json:"reason,omitempty"`
	ProcessingTime   string           `json:"processing_time"`
}

// Fallback constants. A confidence at or below these values means the data
// came from the fallback path and should be treated as unreliable.
const (
	identifyFallbackConfidence  = 50
	nutritionFallbackConfidence = 60
	fallbackCalories            = 200
	fallbackProtein             = 10
	fallbackCarbs               = 20
	fallbackFat                 = 8
	fallbackFiber               = 3
)

// VisionService talks to a multimodal chat-completions API. The credential
// is injected at construction and the service is rebuilt when the stored
// key changes; there is no process-global client.
type VisionService struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

const defaultVisionAPIURL = "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions"
const defaultVisionModel = "gemini-2.5-flash"

// NewVisionService creates a gateway bound to the given credential. An empty
// apiURL or client selects the defaults.
func NewVisionService(apiKey, apiURL string, client *http.Client) *VisionService {
	if apiURL == "" {
		apiURL = defaultVisionAPIURL
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &VisionService{
		apiKey: apiKey,
		apiURL: apiURL,
		model:  defaultVisionModel,
		client: client,
	}
}

// HasCredential reports whether a provider key is configured.
func (s *VisionService) HasCredential() bool {
	return s.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
}

type imagePart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL *struct {
		URL string `json:"url"`
	} `json:"image_url,omitempty"`
}

const identifyPrompt = `Analyze this food image and identify all visible food items. Respond with a JSON object:

{
  "items": [
    {
      "name": "food item name",
      "quantity": "number and unit (e.g., '2 pieces', '1 cup', '100g')",
      "estimated_size": "description of portion size (e.g., 'medium', 'large bowl', 'small serving')",
      "confidence": confidence_percentage_0_to_100
    }
  ],
  "confidence": overall_confidence_0_to_100
}

Identify each visible food item separately, estimate quantities and portion
sizes from visual cues, and be specific about the food items. Only respond
with the JSON object, no additional text.`

// IdentifyFood sends the encoded photo to the provider and returns the
// identified items. Any failure degrades to a single-item fallback so the
// review screen is never empty; this call cannot fail from the caller's
// perspective.
func (s *VisionService) IdentifyFood(ctx context.Context, encodedImage string) IdentifyResult {
	start := time.Now()

	if s.apiKey == "" {
		return identifyFallback(start, "api key not configured")
	}

	content := []imagePart{
		{Type: "text", Text: identifyPrompt},
		{Type: "image_url", ImageURL: &struct {
			URL string `json:"url"`
		}{URL: "data:image/jpeg;base64," + encodedImage}},
	}

	raw, err := s.complete(ctx, []chatMessage{{Role: "user", Content: content}})
	if err != nil {
		log.Printf("[VisionService] identify failed: %v", err)
		return identifyFallback(start, err.Error())
	}

	var result IdentifyResult
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &result); err != nil {
		log.Printf("[VisionService] identify returned malformed JSON: %v", err)
		return identifyFallback(start, "malformed provider response")
	}
	if len(result.Items) == 0 {
		return identifyFallback(start, "provider returned no items")
	}

	result.ProcessingTime = processingTime(start)
	return result
}

func identifyFallback(start time.Time, reason string) IdentifyResult {
	return IdentifyResult{
		Items: []IdentifiedItem{{
			Name:          "Unknown Food Item",
			Quantity:      "1 serving",
			EstimatedSize: "medium",
			Confidence:    identifyFallbackConfidence,
		}},
		Confidence:     identifyFallbackConfidence,
		Degraded:       true,
		Reason:         reason,
		ProcessingTime: processingTime(start),
	}
}

// CalculateNutrition requests per-item calories and macros for the confirmed
// item list. The only hard error is a missing credential; provider failures
// degrade to a deterministic placeholder so the pipeline always produces a
// savable entry.
func (s *VisionService) CalculateNutrition(ctx context.Context, items []IdentifiedItem) (NutritionResult, error) {
	start := time.Now()

	if s.apiKey == "" {
		return NutritionResult{}, ErrNoAPIKey
	}

	var sb strings.Builder
	for i, item := range items {
		fmt.Fprintf(&sb, "%d. %s - %s (%s)\n", i+1, item.Name, item.Quantity, item.EstimatedSize)
	}

	prompt := fmt.Sprintf(`Calculate detailed nutritional information for these food items:

%s
Respond with a JSON object:

{
  "foodItems": [
    {
      "name": "food item name",
      "calories": estimated_calories_number,
      "weight": "estimated_weight_in_grams",
      "confidence": confidence_percentage_0_to_100,
      "nutrients": {"protein": grams, "carbs": grams, "fat": grams, "fiber": grams}
    }
  ],
  "totalCalories": total_calories_number,
  "totalWeight": "total_weight_in_grams",
  "confidence": overall_confidence_0_to_100,
  "nutritionSummary": {"protein": grams, "carbs": grams, "fat": grams, "fiber": grams}
}

Provide realistic estimates for the specified quantities and portion sizes.
Only respond with the JSON object, no additional text.`, sb.String())

	raw, err := s.complete(ctx, []chatMessage{{Role: "user", Content: prompt}})
	if err != nil {
		log.Printf("[VisionService] nutrition calculation failed: %v", err)
		return nutritionFallback(items, start, err.Error()), nil
	}

	var result NutritionResult
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &result); err != nil {
		log.Printf("[VisionService] nutrition response malformed: %v", err)
		return nutritionFallback(items, start, "malformed provider response"), nil
	}

	result.ProcessingTime = processingTime(start)
	return result, nil
}

// nutritionFallback assigns each item a fixed placeholder and derives totals
// as itemCount times the per-item value.
func nutritionFallback(items []IdentifiedItem, start time.Time, reason string) NutritionResult {
	n := float64(len(items))
	estimates := make([]FoodEstimate, len(items))
	for i, item := range items {
		estimates[i] = FoodEstimate{
			Name:       item.Name,
			Calories:   fallbackCalories,
			Weight:     "100g",
			Confidence: nutritionFallbackConfidence,
			Nutrients: NutrientEstimate{
				Protein: fallbackProtein,
				Carbs:   fallbackCarbs,
				Fat:     fallbackFat,
				Fiber:   fallbackFiber,
			},
		}
	}
	return NutritionResult{
		FoodItems:     estimates,
		TotalCalories: fallbackCalories * n,
		TotalWeight:   fmt.Sprintf("%dg", len(items)*100),
		Confidence:    nutritionFallbackConfidence,
		NutritionSummary: NutrientEstimate{
			Protein: fallbackProtein * n,
			Carbs:   fallbackCarbs * n,
			Fat:     fallbackFat * n,
			Fiber:   fallbackFiber * n,
		},
		Degraded:       true,
		Reason:         reason,
		ProcessingTime: processingTime(start),
	}
}

// complete performs one chat-completions request and returns the text of
// the first choice.
func (s *VisionService) complete(ctx context.Context, messages []chatMessage) (string, error) {
	reqBody := chatRequest{
		Model:          s.model,
		Messages:       messages,
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    0.2,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from API")
	}

	return result.Choices[0].Message.Content, nil
}

var codeFenceRe = regexp.MustCompile("```json\n?|\n?```")

// stripCodeFences removes Markdown code-fence wrappers the model sometimes
// adds around its JSON payload.
func stripCodeFences(text string) string {
	return strings.TrimSpace(codeFenceRe.ReplaceAllString(text, ""))
}

func processingTime(start time.Time) string {
	return fmt.Sprintf("%.1fs", time.Since(start).Seconds())
}
