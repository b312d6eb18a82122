package config

import "testing"

func TestScannerConfig_ThreshFractions(t *testing.T) {
	c := ScannerConfig{ThreshEnterPc: 0.40, ThreshExitPc: 0.30}

	enter := c.ThreshEnterFraction()
	if !enter.Equal(enter) {
		t.Fatal("sanity check failed")
	}
	want := "0.004"
	if got := enter.String(); got != want {
		t.Fatalf("ThreshEnterFraction() = %s, want %s", got, want)
	}

	wantExit := "0.003"
	if got := c.ThreshExitFraction().String(); got != wantExit {
		t.Fatalf("ThreshExitFraction() = %s, want %s", got, wantExit)
	}
}

func TestScannerConfig_LongAndStaleMs(t *testing.T) {
	c := ScannerConfig{LongSecs: 60, StaleSecs: 30.5}

	if got := c.LongMs(); got != 60000 {
		t.Fatalf("LongMs() = %d, want 60000", got)
	}
	if got := c.StaleMs(); got != 30500 {
		t.Fatalf("StaleMs() = %d, want 30500", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid",
			cfg: Config{
				Scanner: ScannerConfig{Pairs: []string{"BTC/USDT"}, MaxDecimals: 12, ThreshEnterPc: 0.4, ThreshExitPc: 0.3},
				Venues:  VenuesConfig{Enabled: []string{"binance"}},
			},
			wantErr: false,
		},
		{
			name: "empty pairs",
			cfg: Config{
				Scanner: ScannerConfig{MaxDecimals: 12, ThreshEnterPc: 0.4, ThreshExitPc: 0.3},
				Venues:  VenuesConfig{Enabled: []string{"binance"}},
			},
			wantErr: true,
		},
		{
			name: "exit not below enter",
			cfg: Config{
				Scanner: ScannerConfig{Pairs: []string{"BTC/USDT"}, MaxDecimals: 12, ThreshEnterPc: 0.3, ThreshExitPc: 0.3},
				Venues:  VenuesConfig{Enabled: []string{"binance"}},
			},
			wantErr: true,
		},
		{
			name: "no venues",
			cfg: Config{
				Scanner: ScannerConfig{Pairs: []string{"BTC/USDT"}, MaxDecimals: 12, ThreshEnterPc: 0.4, ThreshExitPc: 0.3},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
