package bookforge

import (
	"errors"
	"fmt"

	"github.com/opd-ai/horde"
)

var ErrNoImage = errors.New("no image returned")

type HordeClient struct {
	*horde.Client
}

func NewHordeClient(apiKey string) *HordeClient {
	return &HordeClient{
		Client: horde.NewClient(apiKey),
	}
}

// ImageGenerate blocks until the horde has produced and served one image.
func (c *HordeClient) ImageGenerate(prompt string, steps, width, height int, modelName string, progress Progressor) ([]byte, error) {
	pr := orNull(progress)

	if steps == 0 {
		steps = horde.DefaultSteps
		pr.UpdateOutput(fmt.Sprintf("Using default steps: %d", steps))
	}
	if width == 0 {
		width = horde.DefaultWidth
		pr.UpdateOutput(fmt.Sprintf("Using default width: %d", width))
	}
	if height == 0 {
		height = horde.DefaultHeight
		pr.UpdateOutput(fmt.Sprintf("Using default height: %d", height))
	}
	if modelName == "" {
		modelName = horde.DefaultModel
		pr.UpdateOutput(fmt.Sprintf("Using default model: %s", modelName))
	}
	pr.UpdateOutput(fmt.Sprintf("Starting image generation: steps=%d, width=%d, height=%d", steps, width, height))

	req := horde.GenerationRequest{
		Prompt: prompt,
		Params: horde.Params{
			Steps:     steps,
			Width:     width,
			Height:    height,
			ModelName: modelName,
		},
	}

	pr.UpdateOutput("Submitting generation request...")
	resp, err := c.RequestGeneration(req)
	if err != nil {
		return nil, fmt.Errorf("requesting generation: %w", err)
	}
	pr.UpdateOutput(fmt.Sprintf("Request accepted, got ID: %s", resp.ID))

	pr.UpdateOutput("Waiting for generation to complete...")
	status, err := c.WaitForCompletion(resp.ID)
	if err != nil {
		return nil, fmt.Errorf("waiting for completion: %w", err)
	}
	if len(status.Generation) == 0 {
		return nil, ErrNoImage
	}

	pr.UpdateOutput("Downloading generated image...")
	imageData, err := c.DownloadImage(status.Generation[0].Image)
	if err != nil {
		return nil, fmt.Errorf("downloading image: %w", err)
	}
	pr.UpdateOutput(fmt.Sprintf("Downloaded image: %d bytes", len(imageData)))
	return imageData, nil
}

// GenerateCover renders a cover for a book using a prompt derived from its
// title when prompt is empty.
func GenerateCover(c ImageClient, prompt, title, subtitle string, progress Progressor) ([]byte, error) {
	if prompt == "" {
		prompt = coverPrompt(title, subtitle)
	}
	data, err := c.ImageGenerate(prompt, 0, 512, 768, "", progress)
	if err != nil {
		return nil, fmt.Errorf("generating cover: %w", err)
	}
	return data, nil
}
