package enrich

import "github.com/robertof/go-btinfo/hci"

type hciRadio struct {
	*hci.Host
}

// NewHCIRadio exposes a hci.Host as a Radio.
func NewHCIRadio(host *hci.Host) Radio {
	return hciRadio{host}
}

func (r hciRadio) Open(id int) (Adapter, error) {
	a, err := r.Host.Open(id)
	if err != nil {
		return nil, err
	}

	return a, nil
}
