package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go_5_skill_sync/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatResponse(content string) []byte {
	b, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return b
}

func newTestGenerator(t *testing.T, handler http.HandlerFunc) (*openAIOptionGenerator, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	gen, ok := NewOptionGenerator(config.GeneratorConfig{
		Enabled:      true,
		APIKey:       "sk-test",
		BaseURL:      srv.URL + "/v1/",
		Model:        "gpt-3.5-turbo",
		Timeout:      5 * time.Second,
		MaxRetries:   3,
		RetryBackoff: time.Second,
	}, srv.Client()).(*openAIOptionGenerator)
	require.True(t, ok)

	var slept []time.Duration
	gen.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return gen, &slept
}

func TestOptionGenerator_GenerateOptions(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: コードブロック付きの応答から4択を取り出す", func(t *testing.T) {
		gen, slept := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

			var body chatCompletionRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "gpt-3.5-turbo", body.Model)
			require.Len(t, body.Messages, 1)
			assert.Contains(t, body.Messages[0].Content, "Correct Answer: channel")

			w.Write(chatResponse("```json\n[\"channel\", \"<b>mutex</b>\", \"Tom & Jerry\", \"map\"]\n```"))
		})

		options, err := gen.GenerateOptions(ctx, "What passes values between goroutines?", "channel", "Go")
		require.NoError(t, err)
		assert.Equal(t, []string{"channel", "mutex", "Tom & Jerry", "map"}, options)
		assert.Empty(t, *slept)
	})

	t.Run("正常系: 失敗したら待ち時間を伸ばしながら再試行する", func(t *testing.T) {
		var calls int32
		gen, slept := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write(chatResponse(`["a", "b", "c", "d"]`))
		})

		options, err := gen.GenerateOptions(ctx, "q", "a", "t")
		require.NoError(t, err)
		assert.Len(t, options, 4)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *slept)
	})

	t.Run("異常系: 全ての試行が失敗する", func(t *testing.T) {
		var calls int32
		gen, _ := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.Write(chatResponse(`["only", "three", "options"]`))
		})

		_, err := gen.GenerateOptions(ctx, "q", "a", "t")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected 4 options")
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("異常系: キャンセルされたら待たずに終わる", func(t *testing.T) {
		gen, _ := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
		gen.sleep = sleepContext
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := gen.GenerateOptions(cctx, "q", "a", "t")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("異常系: 無効化されている", func(t *testing.T) {
		for _, cfg := range []config.GeneratorConfig{
			{Enabled: false, APIKey: "sk"},
			{Enabled: true, APIKey: " "},
		} {
			_, err := NewOptionGenerator(cfg, nil).GenerateOptions(ctx, "q", "a", "t")
			assert.ErrorIs(t, err, ErrGeneratorDisabled)
		}
	})
}

func TestParseOptions(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		want    []string
		wantErr bool
	}{
		{name: "正常系: 前後に文章がある", content: "Here you go:\n[\"1\",\"2\",\"3\",\"4\"]\nGood luck", want: []string{"1", "2", "3", "4"}},
		{name: "異常系: 配列が無い", content: "no options", wantErr: true},
		{name: "異常系: JSONとして壊れている", content: `["1", "2", 3`, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseOptions(tc.content)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEnsureCorrectOption(t *testing.T) {
	testCases := []struct {
		name        string
		options     []string
		answer      string
		wantOptions []string
		wantIndex   int
	}{
		{
			name:        "正常系: 大文字小文字と空白の違いは一致とみなす",
			options:     []string{"x", "Hello   World", "y", "z"},
			answer:      "hello world",
			wantOptions: []string{"x", "Hello   World", "y", "z"},
			wantIndex:   1,
		},
		{
			name:        "正常系: 一致が無ければ先頭を置き換える",
			options:     []string{"x", "y", "z", "w"},
			answer:      "answer",
			wantOptions: []string{"answer", "y", "z", "w"},
			wantIndex:   0,
		},
		{
			name:        "正常系: 空なら固定の選択肢",
			options:     nil,
			answer:      "answer",
			wantOptions: FallbackOptions("answer"),
			wantIndex:   0,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			original := append([]string(nil), tc.options...)
			got, idx := EnsureCorrectOption(tc.options, tc.answer)
			assert.Equal(t, tc.wantOptions, got)
			assert.Equal(t, tc.wantIndex, idx)
			// 元のスライスは書き換えない
			assert.Equal(t, original, append([]string(nil), tc.options...))
		})
	}
}
