package gcdriver

import "github.com/wirepair/gcd/gcdapi"

func (t *Tab) click(x, y float64, clickCount int) error {
	if err := t.moveMouse(x, y); err != nil {
		return err
	}

	for _, kind := range []string{"mousePressed", "mouseReleased"} {
		params := &gcdapi.InputDispatchMouseEventParams{TheType: kind,
			X:          x,
			Y:          y,
			Button:     "left",
			ClickCount: clickCount,
		}
		if _, err := t.t.Input.DispatchMouseEventWithParams(params); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tab) moveMouse(x, y float64) error {
	mouseMovedParams := &gcdapi.InputDispatchMouseEventParams{TheType: "mouseMoved",
		X: x,
		Y: y,
	}

	_, err := t.t.Input.DispatchMouseEventWithParams(mouseMovedParams)
	return err
}

// sendKeys to whatever is focused. \n is Enter, \b backspace and \t Tab.
func (t *Tab) sendKeys(text string) error {
	inputParams := &gcdapi.InputDispatchKeyEventParams{TheType: "char"}

	for _, inputchar := range text {
		input := string(inputchar)

		if _, ok := systemKeys[input]; ok {
			if err := t.pressSystemKey(input); err != nil {
				return err
			}
			continue
		}
		inputParams.Text = input
		if _, err := t.t.Input.DispatchKeyEventWithParams(inputParams); err != nil {
			return err
		}
	}
	return nil
}

type systemKey struct {
	text string
	code int
}

var systemKeys = map[string]systemKey{
	"\b": {text: "\b", code: 8},
	"\t": {text: "\t", code: 9},
	"\r": {text: "\r", code: 13},
	"\n": {text: "\r", code: 13},
}

func (t *Tab) pressSystemKey(key string) error {
	k := systemKeys[key]
	inputParams := &gcdapi.InputDispatchKeyEventParams{
		TheType:               "rawKeyDown",
		UnmodifiedText:        k.text,
		Text:                  k.text,
		WindowsVirtualKeyCode: k.code,
		NativeVirtualKeyCode:  k.code,
	}

	for _, kind := range []string{"rawKeyDown", "char", "keyUp"} {
		inputParams.TheType = kind
		if _, err := t.t.Input.DispatchKeyEventWithParams(inputParams); err != nil {
			return err
		}
	}
	return nil
}
