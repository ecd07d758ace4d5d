package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"vidops/internal/testsupport"
)

func TestShowListsCatalogAssetsForVideo(t *testing.T) {
	env := setupCLITestEnv(t)

	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.PullDir, "dQw4w9WgXcQ__clip.mp4"), "video")
	testsupport.WordTable(t, env.cfg.Paths.GeneratedDir, "dQw4w9WgXcQ__clip.mp4",
		"0.0\t1.0\thello\t0\t-0.2\t0",
	)
	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.GeneratedDir, "dQw4w9WgXcQ__clip.vtt"),
		"WEBVTT\n\n00:00:00.000 --> 00:00:01.000\nhello\n\n")

	if _, _, err := runCLI(t, []string{"export", "--output", filepath.Join(t.TempDir(), "catalog.tsv")}, env.configPath); err != nil {
		t.Fatalf("export: %v", err)
	}

	out, _, err := runCLI(t, []string{"show", "dQw4w9WgXcQ"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "dQw4w9WgXcQ__clip.mp4")
	requireContains(t, out, "whisper")

	jsonOut, _, err := runCLI(t, []string{"--json", "show", "dQw4w9WgXcQ"}, env.configPath)
	if err != nil {
		t.Fatalf("show --json: %v", err)
	}
	var payload struct {
		VideoID string `json:"video_id"`
		Assets  []struct {
			MediaFile       string  `json:"media_file"`
			Source          string  `json:"source"`
			Words           int     `json:"words"`
			DurationSeconds float64 `json:"duration_seconds"`
		} `json:"assets"`
	}
	if err := json.Unmarshal([]byte(jsonOut), &payload); err != nil {
		t.Fatalf("unmarshal show JSON: %v\n%s", err, jsonOut)
	}
	if payload.VideoID != "dQw4w9WgXcQ" || len(payload.Assets) != 1 {
		t.Fatalf("payload = %+v", payload)
	}
	asset := payload.Assets[0]
	if asset.Source != "whisper" || asset.Words != 1 {
		t.Fatalf("asset = %+v", asset)
	}
	if asset.DurationSeconds < 0.999 || asset.DurationSeconds > 1.001 {
		t.Fatalf("duration = %f, want end of last cue", asset.DurationSeconds)
	}
}

func TestShowUnknownVideoID(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"show", "nosuchvideo"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "No catalogued assets for nosuchvideo")
}
