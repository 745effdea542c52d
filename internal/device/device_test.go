package device

import "testing"

func TestClassify(t *testing.T) {
	a := []Device{{ID: "A", RawStatus: "device"}}
	b := []Device{{ID: "B", RawStatus: "fastboot"}}

	tests := []struct {
		name       string
		bridge     Observation
		bootloader Observation
		priority   Priority
		want       Mode
	}{
		{name: "never polled", want: ModeUnknown},
		{name: "polled empty", bridge: Observation{Polled: true}, want: ModeNone},
		{name: "bootloader polled empty", bootloader: Observation{Polled: true}, want: ModeNone},
		{name: "bridge only", bridge: Observation{Devices: a, Polled: true}, want: ModeBridge},
		{name: "bootloader only", bridge: Observation{Polled: true}, bootloader: Observation{Devices: b, Polled: true}, want: ModeBootloader},
		{name: "both prefers bridge", bridge: Observation{Devices: a, Polled: true}, bootloader: Observation{Devices: b, Polled: true}, want: ModeBridge},
		{name: "both prefers bootloader", bridge: Observation{Devices: a, Polled: true}, bootloader: Observation{Devices: b, Polled: true}, priority: PreferBootloader, want: ModeBootloader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.bridge, tt.bootloader, tt.priority)
			if got != tt.want {
				t.Fatalf("Classify = %v, want %v", got, tt.want)
			}
			if again := Classify(tt.bridge, tt.bootloader, tt.priority); again != got {
				t.Fatalf("Classify not deterministic: %v then %v", got, again)
			}
		})
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in      string
		want    Priority
		wantErr bool
	}{
		{in: "", want: PreferBridge},
		{in: "bridge", want: PreferBridge},
		{in: " ADB ", want: PreferBridge},
		{in: "bootloader", want: PreferBootloader},
		{in: "fastboot", want: PreferBootloader},
		{in: "usb", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParsePriority(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParsePriority(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Fatalf("ParsePriority(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSanitize(t *testing.T) {
	in := []Device{{ID: " A "}, {ID: ""}, {ID: "B", RawStatus: "recovery"}}
	got := Sanitize(in, "device")
	want := []Device{{ID: "A", RawStatus: "device"}, {ID: "B", RawStatus: "recovery"}}
	if !Equal(got, want) {
		t.Fatalf("Sanitize = %#v, want %#v", got, want)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	src := []Device{{ID: "A"}}
	dup := Clone(src)
	dup[0].ID = "Z"
	if src[0].ID != "A" {
		t.Fatalf("Clone shares backing array; src = %#v", src)
	}
	if Clone(nil) != nil {
		t.Fatalf("Clone(nil) should be nil")
	}
}
