package config

import "time"

// built-in workload names
const (
	WorkloadSGLang   = "sglang"
	WorkloadVLLM     = "vllm"
	WorkloadTensorRT = "tensorrt"
)

// DefaultWorkloads returns the built-in workload definitions in display order
func DefaultWorkloads() []*Workload {
	return []*Workload{
		sglangWorkload(),
		vllmWorkload(),
		tensorrtWorkload(),
	}
}

func sglangWorkload() *Workload {
	return &Workload{
		Name:          WorkloadSGLang,
		Readiness:     true,
		HealthPath:    "health_generate",
		Port:          8000,
		ContainerPort: DefaultContainerPort,
		Timeout:       20 * time.Minute,
		Phases: []Phase{
			{Name: "sglang_init", Patterns: []string{"starting sglang", "sglang server", "initializing sglang", "launch_server"}},
			{Name: "weights_download", Patterns: []string{"load weight begin"}},
			{Name: "weights_download_complete", Patterns: []string{
				"loading safetensors checkpoint shards: 0%",
				GlobPrefix + "*loading safetensors checkpoint shards:*0%*",
			}},
			{Name: "weights_loaded", Patterns: []string{"load weight end"}},
			{Name: "kv_cache_allocated", Patterns: []string{"kv cache is allocated", "kv cache allocated"}},
			{Name: "graph_capture_begin", Patterns: []string{"capture cuda graph begin", "capturing cuda graph"}},
			{Name: "graph_capture_end", Patterns: []string{"capture cuda graph end", "cuda graph capture complete"}},
			{Name: "server_log_ready", Patterns: []string{"starting server", "server starting", "uvicorn", "listening on"}},
		},
	}
}

func vllmWorkload() *Workload {
	return &Workload{
		Name:          WorkloadVLLM,
		Readiness:     true,
		HealthPath:    "health",
		Port:          DefaultPort,
		ContainerPort: DefaultContainerPort,
		Timeout:       20 * time.Minute,
		Phases: []Phase{
			{Name: "engine_init", Patterns: []string{"initializing a v1 llm engine", "waiting for init message", "v1 llm engine"}},
			{Name: "weights_download", Patterns: []string{"starting to load model", "loading model from scratch"}},
			{Name: "weights_download_complete", Patterns: []string{"time spent downloading weights", "downloading weights"}},
			{Name: "weights_loaded", Patterns: []string{
				"loading weights took",
				"loading safetensors checkpoint shards: 100%",
				GlobPrefix + "*loading safetensors checkpoint shards:*100%*",
			}},
			{Name: "graph_capture", Patterns: []string{"graph capturing finished", "capturing cuda graph shapes: 100%"}},
			{Name: "server_log_ready", Patterns: []string{"started server process"}},
		},
	}
}

func tensorrtWorkload() *Workload {
	return &Workload{
		Name:          WorkloadTensorRT,
		Readiness:     true,
		HealthPath:    "health",
		Port:          DefaultPort,
		ContainerPort: DefaultContainerPort,
		Timeout:       25 * time.Minute,
		Phases: []Phase{
			{Name: "engine_init", Patterns: []string{"pytorchconfig(", "tensorrt-llm version", "kv cache quantization"}},
			{Name: "weight_download_start", Patterns: []string{"prefetching", "checkpoint files", "gb for model weights"}},
			{Name: "weight_download_complete", Patterns: []string{"loading /workspace/huggingface"}},
			{Name: "weights_loaded", Patterns: []string{"loading weights: 100%", "model init total"}},
			{Name: "model_loaded", Patterns: []string{
				"autotuning process ends",
				"autotuner cache size",
				"max_seq_len=",
				"max_num_requests=",
				GlobPrefix + "*allocated*gib for max tokens*",
			}},
			{Name: "server_log_ready", Patterns: []string{"started server process", "waiting for application startup"}},
		},
	}
}
