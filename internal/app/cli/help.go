package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"fastpull/internal/config"
)

// RenderHelp renders usage, commands and examples
func RenderHelp() string {
	usage := lipgloss.JoinVertical(
		lipgloss.Left,
		bodyMedium.Render("  "+commandName.Render("fastpull bench <workload> [flags]")+"   Benchmark a workload's container startup"),
		bodyMedium.Render("  "+commandName.Render("fastpull workloads")+"                  List workloads and their phases"),
		bodyMedium.Render("  "+commandName.Render("fastpull version")+"                    Show version"),
	)

	flags := lipgloss.JoinVertical(
		lipgloss.Left,
		bodyMedium.Render("  --image <ref>            Full image reference"),
		bodyMedium.Render("  --registry, --repo, --tag, --region   Build the image reference"),
		bodyMedium.Render("  --snapshotter <name>     "+strings.Join(config.Snapshotters, ", ")),
		bodyMedium.Render("  --port, --container-name, --model-mount-path, --env-file"),
		bodyMedium.Render("  --log-file <path>        Follow a file instead of container logs"),
		bodyMedium.Render("  --output-json <path>     Write the report as JSON"),
		bodyMedium.Render("  --keep-image, --timeout <duration>, --config <path>"),
	)

	examples := lipgloss.JoinVertical(
		lipgloss.Left,
		bodyMedium.Render("  "+exampleCode.Render("fastpull bench vllm --image ghcr.io/acme/vllm:latest-nydus")),
		bodyMedium.Render("  "+exampleCode.Render("fastpull bench sglang --registry 123.dkr.ecr.{region}.amazonaws.com --repo sglang --snapshotter soci")),
		bodyMedium.Render("  "+exampleCode.Render("fastpull bench tensorrt --image trt:latest --snapshotter overlayfs --output-json trt.json")),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		RenderTitle(),
		sectionHeader.Render("Usage:"),
		usage,
		sectionHeader.Render("Flags:"),
		flags,
		sectionHeader.Render("Examples:"),
		examples,
	) + "\n"
}

// RenderWorkloads lists workloads in display order with their phases
func RenderWorkloads(cfg *config.Config) string {
	var b strings.Builder

	b.WriteString(sectionHeader.Render("Workloads:"))
	b.WriteString("\n")

	for _, name := range cfg.WorkloadNames() {
		w := cfg.Workloads[name]

		readiness := "no readiness endpoint"
		if w.Readiness {
			readiness = "readiness /" + w.HealthPath
		}

		fmt.Fprintf(&b, "  %s  %s\n", commandName.Render(name), helpText.UnsetMarginTop().Render(fmt.Sprintf("port %d, %s, timeout %s", w.Port, readiness, w.Timeout)))

		for _, p := range w.Phases {
			fmt.Fprintf(&b, "    %s\n", bodyMedium.Render(p.Name))
		}
	}

	return b.String()
}
