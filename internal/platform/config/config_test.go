// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-drive/internal/platform/config"
)

/*
TestLoad_Defaults verifies that an empty environment still yields a usable config.
*/
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DRIVE_API_KEY", "")
	t.Setenv("DRIVE_ROOT_FOLDER_ID", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 100, cfg.DrivePageSize)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.DriveConfigured())
}

/*
TestLoad_DriveConfigured checks that both credential and folder are needed.
*/
func TestLoad_DriveConfigured(t *testing.T) {
	t.Setenv("DRIVE_API_KEY", "key")
	t.Setenv("DRIVE_ROOT_FOLDER_ID", "   ")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.False(t, cfg.DriveConfigured())

	t.Setenv("DRIVE_ROOT_FOLDER_ID", "root")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.DriveConfigured())
}

func TestLoad_InvalidPageSize(t *testing.T) {
	t.Setenv("DRIVE_PAGE_SIZE", "0")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestConfig_AllowedOrigins(t *testing.T) {
	cfg := &config.Config{ExtraOrigins: " https://a.example , ,https://b.example"}
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())

	assert.Empty(t, (&config.Config{}).AllowedOrigins())
}
