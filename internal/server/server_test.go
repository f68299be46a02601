package server

import "testing"

func TestServiceDescriptorParses(t *testing.T) {
	svc, err := ServiceDescriptor()
	if err != nil {
		t.Fatalf("ServiceDescriptor: %v", err)
	}
	if svc.GetName() != "RaceAnalyzer" {
		t.Errorf("service name = %q, want RaceAnalyzer", svc.GetName())
	}
	method := svc.FindMethodByName("AnalyzeSource")
	if method == nil {
		t.Fatal("AnalyzeSource method not found")
	}
	if method.GetInputType().FindFieldByName("source") == nil {
		t.Error("AnalyzeRequest missing 'source' field")
	}
	warningsField := method.GetOutputType().FindFieldByName("warnings")
	if warningsField == nil {
		t.Fatal("AnalyzeResponse missing 'warnings' field")
	}
	if warningsField.GetMessageType().FindFieldByName("line_a") == nil {
		t.Error("RaceWarning missing 'line_a' field")
	}
}
