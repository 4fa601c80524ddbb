package main

import "machine"

const (
	// Crossing profile: false = elaborated (25 cm, 9999 ms), true = simple (100 cm, 10 s)
	SIMPLE_PROFILE = false

	// Request button, active low with internal pull-up
	PIN_BUTTON = machine.D2

	// Traffic lights and buzzer
	PIN_GREEN  = machine.D3
	PIN_YELLOW = machine.D4
	PIN_RED    = machine.D5
	PIN_BUZZER = machine.D6

	// HC-SR04 ultrasonic ranger. Echo and servo are swapped relative to the
	// first board revision (servo D7, echo D9): D7 has no hardware PWM.
	PIN_ECHO    = machine.D7
	PIN_TRIGGER = machine.D8

	// Gate servo, must be an output of PWM_SERVO (Timer1 drives D9 and D10)
	PIN_SERVO = machine.D9

	// Seven segment digit (common cathode)
	PIN_SEG_A = machine.D11
	PIN_SEG_B = machine.D10
	PIN_SEG_C = machine.ADC2
	PIN_SEG_D = machine.ADC1
	PIN_SEG_E = machine.ADC0
	PIN_SEG_F = machine.D12
	PIN_SEG_G = machine.D13

	// Serial configuration
	// One diagnostic line is ~100 bytes every ~30 ms (ranger settle delay):
	// ~3,300 bytes/sec, which needs at least 33,000 baud. At 9600 baud the
	// loop is paced by the UART; the host tolerates that.
	UART_BAUD_RATE = 9600
)

// PWM_SERVO drives PIN_SERVO.
var PWM_SERVO = machine.Timer1
